package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally-ho/internal/cli"
	"github.com/Veraticus/tally-ho/internal/config"
	"github.com/Veraticus/tally-ho/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Bring the database schema up to the current version. Migrations also run automatically before every command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dbPath := viper.GetString("database.path")
			if dbPath == "" {
				dbPath = config.DefaultDatabasePath()
			}
			dbPath = config.ExpandPath(dbPath)

			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database at %s is at schema version %d", dbPath, storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
