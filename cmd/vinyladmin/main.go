package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vinylhub/internal/config"
	applog "vinylhub/internal/log"
	"vinylhub/internal/maint"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if _, err := applog.Setup(applog.Options{Env: "development", Level: cfg.LogLevel}); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := newRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		applog.Logger().Error().Err(err).Msg("vinyladmin")
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var dbPath string
	var m *maint.Maint

	root := &cobra.Command{
		Use:           "vinyladmin",
		Short:         "Maintenance commands for the VinylHub users table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			m, err = maint.Open(dbPath, cmd.OutOrStdout())
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if m != nil {
				return m.DB.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", cfg.DBDSN, "sqlite file")

	root.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "Show id, username and password of every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return m.Users(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Print file stats, tables, users columns and up to 200 users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return m.Check(cmd.Context(), dbPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "count-test",
		Short: "Count users whose name starts with testuser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := m.CountTest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "testusers: %d\n", n)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "remove-header",
		Short: "Delete the user literally named \"username\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := m.RemoveHeader(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted: %d\n", n)
			return nil
		},
	})

	root.AddCommand(importCmd(&m))
	root.AddCommand(keepAdminCmd(&m, cfg))
	return root
}

func importCmd(m **maint.Maint) *cobra.Command {
	var hash string
	var opts maint.ImportOptions
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Insert username,password rows from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := maint.ParseHashMode(hash)
			if err != nil {
				return err
			}
			opts.Hash = mode
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := (*m).Import(cmd.Context(), f, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted=%d existing=%d skipped_bad=%d hashed=%t\n",
				res.Inserted, res.Existing, res.SkippedBad, res.Hashed)
			return nil
		},
	}
	cmd.Flags().StringVar(&hash, "hash", string(maint.HashAuto), "auto, always or never")
	cmd.Flags().BoolVar(&opts.SkipHeader, "skip-header", false, "ignore the first line")
	cmd.Flags().BoolVar(&opts.Latin1, "latin1", false, "decode the file as ISO-8859-1")
	return cmd
}

func keepAdminCmd(m **maint.Maint, cfg config.Config) *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "keep-admin",
		Short: "Delete every user except the admin and reset its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := (*m).KeepAdmin(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			action := "password updated"
			if res.Created {
				action = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted=%d admin %q %s (hashed=%t)\n", res.Deleted, user, action, res.Hashed)
			return (*m).PrintUsernames(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&user, "user", cfg.AdminUser, "admin username to keep")
	cmd.Flags().StringVar(&pass, "pass", cfg.AdminPass, "admin password to set")
	return cmd
}
