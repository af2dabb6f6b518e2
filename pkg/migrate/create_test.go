package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationKeepsVersionsIncreasing(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	first, err := createSQLMigration(dir, "add notes", now)
	require.NoError(t, err)
	assert.Equal(t, "20250301090000_add_notes.sql", filepath.Base(first))

	second, err := createSQLMigration(dir, "add index", now)
	require.NoError(t, err)
	assert.Equal(t, "20250301090001_add_index.sql", filepath.Base(second))

	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	_, err := createSQLMigration(t.TempDir(), " !! ", time.Now())
	assert.Error(t, err)
}

func TestValidateAnnotations(t *testing.T) {
	cases := map[string]string{
		"missing down":     "-- +goose Up\nSELECT 1;\n",
		"down before up":   "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"unterminated":     "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"dangling end":     "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
		"duplicate up":     "-- +goose Up\n-- +goose Up\n-- +goose Down\n",
		"nested statement": "-- +goose Up\n-- +goose StatementBegin\n-- +goose StatementBegin\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validateAnnotations([]byte(content)))
		})
	}
	assert.NoError(t, validateAnnotations([]byte(fmtTemplate("ok"))))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_items.sql"), []byte(fmtTemplate("x")), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func fmtTemplate(name string) string {
	return "-- +goose Up\n-- +goose StatementBegin\n-- " + name + "\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n-- rollback\n-- +goose StatementEnd\n"
}
