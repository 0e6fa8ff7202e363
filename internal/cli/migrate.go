package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"regnify/internal/config"
)

const defaultMigrations = "file://db/migrations"

// MigrateCmd applies or inspects the database schema migrations.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.PersistentFlags().String("path", "", "migration source URL (default $REGNIFY_MIGRATIONS_PATH or "+defaultMigrations+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
			if err := ignoreNoChange(m.Up()); err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
			if err := ignoreNoChange(m.Down()); err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations reverted")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations, or revert when n is negative",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps argument: %w", err)
			}
			if err := ignoreNoChange(m.Steps(n)); err != nil {
				return fmt.Errorf("migration steps failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration steps\n", n)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version argument: %w", err)
			}
			if err := m.Force(v); err != nil {
				return fmt.Errorf("migration force failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forced migration version %d\n", v)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "version: none")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", version, dirty)
			return nil
		}),
	})
	return cmd
}

func withMigrator(run func(*cobra.Command, *migrate.Migrate, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		m, err := migrate.New(migrationSource(cmd), cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer m.Close()
		return run(cmd, m, args)
	}
}

func migrationSource(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		return path
	}
	if env := os.Getenv("REGNIFY_MIGRATIONS_PATH"); env != "" {
		return env
	}
	return defaultMigrations
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
