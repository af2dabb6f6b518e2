package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/scanpos/scanpos-backend/internal/catalog"
	"github.com/scanpos/scanpos-backend/pkg/auth"
	"github.com/scanpos/scanpos-backend/pkg/config"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/logger"
	"github.com/scanpos/scanpos-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	operator := flag.String("operator", "", "also print a back-office access token for this operator id")
	operatorName := flag.String("operator-name", "", "display name embedded in the operator token")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "schema", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	created, err := seedItems(ctx, catalog.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "item seed", err)
	logg.Info(logg.WithField(ctx, "created", created), "catalog seeded")

	if *operator == "" {
		return
	}
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.OperatorPayload{
		OperatorID: *operator,
		Name:       *operatorName,
	})
	requireResource(ctx, logg, "operator token", err)
	fmt.Println(token)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
