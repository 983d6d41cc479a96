package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martina/applicant-screener/internal/config"
	"github.com/martina/applicant-screener/internal/db"
	"github.com/martina/applicant-screener/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  `Create or update the database tables. The schema is idempotent and safe to re-run.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.ApplySchema(ctx, migrations.Schema); err != nil {
		return err
	}

	fmt.Println("schema applied")
	return nil
}
