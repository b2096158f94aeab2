package main

import (
	"fmt"

	"github.com/fejiro0/gomart/internal/db"
	"github.com/spf13/cobra"
)

var (
	rollbackSteps int
	migrateDSN    string
)

// resolveDSN prefers --dsn so migrations can run without the serve settings.
func resolveDSN() (string, error) {
	if migrateDSN != "" {
		return migrateDSN, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Postgres.DSN, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := resolveDSN()
		if err != nil {
			return err
		}
		applied, err := db.RunMigrations(dsn)
		if err != nil {
			return err
		}
		if applied {
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "schema already up to date")
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, err := resolveDSN()
		if err != nil {
			return err
		}
		if err := db.RollbackMigrations(dsn, rollbackSteps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", rollbackSteps)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrateDSN, "dsn", "", "Postgres DSN (default from config)")
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
