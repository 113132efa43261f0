package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medaimane/AthleticEdge/internal/repository/postgres"
	"github.com/medaimane/AthleticEdge/internal/service"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the postgres schema and seed the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreBackend != "postgres" {
				return fmt.Errorf("migrate needs STORE_BACKEND=postgres, got %s", cfg.StoreBackend)
			}

			ctx := cmd.Context()
			db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			return service.NewCatalogService(postgres.NewProductRepository(db)).Seed(ctx)
		},
	}
}
