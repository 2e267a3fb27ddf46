package main

import (
	"errors"

	"github.com/spf13/cobra"

	"certifly/internal/platform/config"
	"certifly/internal/platform/logger"
	"certifly/internal/platform/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log)

			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("database.url is required to migrate")
			}
			defer db.Close()
			return postgres.Migrate(cmd.Context(), db, log)
		},
	}
}
