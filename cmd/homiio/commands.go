package main

import (
	"fmt"

	"homiio/internal"
	postgres_adapter "homiio/internal/adapters/postgres"
	"homiio/internal/configs"

	"github.com/spf13/cobra"
)

func serveCmd(envFile *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, event consumer and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before starting")
	return cmd
}

func runServe(envFile string, migrate bool) error {
	cfg, err := configs.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}

	application, err := internal.NewApp(cfg, internal.Options{MigrateOnStart: migrate})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}

func migrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*envFile, func(m *postgres_adapter.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last applied migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*envFile, func(m *postgres_adapter.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(*envFile, func(m *postgres_adapter.Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

func withMigrator(envFile string, fn func(m *postgres_adapter.Migrator) error) error {
	cfg, err := configs.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}
	migrator, err := postgres_adapter.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return fn(migrator)
}

func printVersion(cmd *cobra.Command, m *postgres_adapter.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if version == 0 {
		cmd.Println("no migrations applied")
		return nil
	}
	if dirty {
		cmd.Printf("version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("version %d\n", version)
	return nil
}
