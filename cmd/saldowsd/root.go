package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/app"
	"github.com/spraakbanken/saldowsd/internal/config"
	"github.com/spraakbanken/saldowsd/internal/saldo"
)

// cli holds persistent flags and what PersistentPreRunE derives from them.
type cli struct {
	configPath string
	saldoPath  string
	format     string
	root       string
	verbose    int

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "saldowsd",
		Short:         "Load, inspect and serve the SALDO lexicon",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "path to config.yaml (default: CONFIG_PATH or ./config.yaml)")
	pf.StringVar(&c.saldoPath, "saldo", "", "path to the SALDO LMF XML file (overrides SALDO_PATH)")
	pf.StringVar(&c.format, "format", "", "compression: auto, plain, gzip, zstd, lz4 (overrides SALDO_FORMAT)")
	pf.StringVar(&c.root, "root", "", "id of the root sense (overrides SALDO_ROOT)")
	pf.CountVarP(&c.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	root.AddCommand(
		newLoadCmd(c),
		newLookupCmd(c),
		newCheckCmd(c),
		newSeedCmd(c),
		newMigrateCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup() error {
	if c.configPath == "" {
		c.configPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.LoadFrom(c.configPath)
	if err != nil {
		return err
	}

	if c.saldoPath != "" {
		cfg.Lexicon.Path = c.saldoPath
	}
	if c.format != "" {
		cfg.Lexicon.Format = c.format
	}
	if c.root != "" {
		cfg.Lexicon.Root = c.root
	}
	cfg.Log.Level = app.VerbosityLevel(c.verbose, cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.cfg = cfg
	c.log = app.NewLogger(cfg.Log)
	return nil
}

func (c *cli) loadLexicon(cmd *cobra.Command, stats *saldo.Stats) (*saldo.Lexicon, error) {
	return app.LoadLexicon(cmd.Context(), c.cfg.Lexicon, c.log, stats)
}
