package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sparesmart-backend/internal/auth"
	"sparesmart-backend/internal/db"
	"sparesmart-backend/internal/export"
	"sparesmart-backend/internal/seed"
	"sparesmart-backend/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := db.Init(&cfg.Database); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the plant lines and Canning Line 2 machines into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			return err
		}
		res, err := seed.Run(cmd.Context(), gormDB)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "database already has lines, nothing seeded")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d lines and %d machines\n", res.Lines, res.Machines)
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			return err
		}
		snap, err := store.NewGormStore(gormDB).Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		if err := export.Write(f, snap); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d parts to %s\n", len(snap.Parts), exportOut)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash for auth.password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "inventory.xlsx", "output file")
}
