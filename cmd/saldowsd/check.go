package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/corpus"
	"github.com/spraakbanken/saldowsd/internal/source"
)

func newCheckCmd(c *cli) *cobra.Command {
	var batchSize, top int
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <corpus.tsv>",
		Short: "Report corpus sense annotations missing from the lexicon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				batchSize = c.cfg.Corpus.BatchSize
			}

			lex, err := c.loadLexicon(cmd, nil)
			if err != nil {
				return err
			}

			f, err := source.Open(args[0], source.FormatAuto)
			if err != nil {
				return fmt.Errorf("corpus: %w", err)
			}
			defer f.Close()

			rep, err := corpus.Check(cmd.Context(), corpus.NewReader(f), lex, batchSize)
			if err != nil {
				return fmt.Errorf("corpus %s: %w", args[0], err)
			}

			c.log.Info("corpus checked",
				slog.String("path", args[0]),
				slog.Int("sentences", rep.Sentences),
				slog.Int("unknown_senses", rep.UnknownSenses),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sentences: %d\ntokens: %d\nannotated tokens: %d\nknown senses: %d\nunknown senses: %d\n",
				rep.Sentences, rep.Tokens, rep.AnnotatedTokens, rep.KnownSenses, rep.UnknownSenses)
			for i, u := range rep.Unknown {
				if top > 0 && i >= top {
					fmt.Fprintf(out, "... %d more\n", len(rep.Unknown)-top)
					break
				}
				fmt.Fprintf(out, "%6d  %s\n", u.Count, u.ID)
			}

			if strict && rep.UnknownSenses > 0 {
				return fmt.Errorf("%d unknown sense annotations", rep.UnknownSenses)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "sentences per batch (default: corpus.batch_size)")
	cmd.Flags().IntVar(&top, "top", 20, "list at most this many unknown senses (0 = all)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any annotation is unknown")
	return cmd
}
