package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/database/seeders"
	"github.com/shashiranjanraj/dailyfresh/pkg/database"
	"github.com/shashiranjanraj/dailyfresh/pkg/migration"
	"github.com/shashiranjanraj/dailyfresh/pkg/storage"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// dailyfresh migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
		return nil
	},
}

// dailyfresh migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back\n", n)
		return nil
	},
}

// dailyfresh migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		rows, err := migration.New(database.DB, nil).Status()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, r := range rows {
			ran, batch := "no", "-"
			if r.Ran {
				ran, batch = "yes", fmt.Sprint(r.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, ran, batch)
		}
		return w.Flush()
	},
}

var seedOnly []string

// dailyfresh seed [--only catalog]
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and demo account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx := context.Background()
		if err := storage.Connect(ctx); err != nil {
			return err
		}
		return seeders.RunAll(ctx, database.DB, cmd.OutOrStdout(), seedOnly...)
	},
}

func init() {
	seedCmd.Flags().StringSliceVar(&seedOnly, "only", nil,
		"Run only these seeders ("+strings.Join(seeders.Names(), ", ")+")")
}
