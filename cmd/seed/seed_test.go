package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanpos/scanpos-backend/internal/catalog"
	"github.com/scanpos/scanpos-backend/pkg/db/dbtest"
)

func TestSeedItemsOnlyFillsEmptyCatalog(t *testing.T) {
	client := dbtest.Open(t)
	repo := catalog.NewRepository(client.DB())

	created, err := seedItems(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, len(demoItems), created)

	again, err := seedItems(context.Background(), repo)
	require.NoError(t, err)
	assert.Zero(t, again)

	items, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, len(demoItems))
}

func TestSeedItemsSkipsPopulatedCatalog(t *testing.T) {
	client := dbtest.Open(t)
	dbtest.SeedItem(t, client, "Existing", "999", "1.00", 1)

	created, err := seedItems(context.Background(), catalog.NewRepository(client.DB()))
	require.NoError(t, err)
	assert.Zero(t, created)
}
