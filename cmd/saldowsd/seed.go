package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/adapter/postgres"
	"github.com/spraakbanken/saldowsd/internal/adapter/postgres/lexstore"
	"github.com/spraakbanken/saldowsd/internal/app/seeder"
)

// Compile-time interface assertions.
var (
	_ seeder.LexiconStore = (*lexstore.Repo)(nil)
	_ seeder.TxRunner     = (*postgres.TxManager)(nil)
)

var errNoDatabase = errors.New("database not configured (set DATABASE_DSN)")

func newSeedCmd(c *cli) *cobra.Command {
	var dryRun bool
	var keep int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the loaded lexicon as a new database snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := seeder.Config{
				BatchSize: c.cfg.Seeder.BatchSize,
				DryRun:    c.cfg.Seeder.DryRun || dryRun,
				Keep:      c.cfg.Seeder.Keep,
			}
			if cmd.Flags().Changed("keep") {
				cfg.Keep = keep
			}
			if !cfg.DryRun && !c.cfg.Database.Enabled() {
				return errNoDatabase
			}

			lex, err := c.loadLexicon(cmd, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var (
				store *lexstore.Repo
				repo  seeder.LexiconStore
				txm   seeder.TxRunner
			)
			if !cfg.DryRun {
				pool, err := postgres.NewPool(ctx, c.cfg.Database)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()
				store = lexstore.New(pool)
				repo = store
				txm = postgres.NewTxManager(pool)
			}

			pipeline := seeder.NewPipeline(c.log, repo, txm, cfg)
			loadID, err := pipeline.Run(ctx, lex, filepath.Base(c.cfg.Lexicon.Path))
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			for phase, r := range pipeline.Results() {
				c.log.Debug("phase result", slog.String("phase", phase), slog.Int("inserted", r.Inserted), slog.Int("skipped", r.Skipped))
			}
			if cfg.DryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: nothing written")
				return nil
			}
			load, err := store.GetLoad(ctx, loadID)
			if err != nil {
				return fmt.Errorf("read back load %s: %w", loadID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "load %s %s: %d entries, %d lemgrams, %d relations\n",
				load.ID, load.Status, load.Entries, load.Lemgrams, load.Relations)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build rows without writing to the database")
	cmd.Flags().IntVar(&keep, "keep", 0, "completed snapshots to keep (default: seeder.keep)")
	return cmd
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.cfg.Database.Enabled() {
				return errNoDatabase
			}
			n, err := postgres.Migrate(cmd.Context(), c.cfg.Database.DSN, c.log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied\n", n)
			return nil
		},
	}
}
