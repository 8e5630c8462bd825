package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/saldo"
)

func newLoadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load and link the lexicon, then print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var stats saldo.Stats
			lex, err := c.loadLexicon(cmd, &stats)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rows := []struct {
				name  string
				value any
			}{
				{"entries", lex.Len()},
				{"lemgrams", lex.LemgramCount()},
				{"root", lex.Root()},
				{"primary edges", stats.Link.PrimaryEdges},
				{"secondary edges", stats.Link.SecondaryEdges},
				{"root references skipped", stats.Link.RootSkipped},
				{"ignored labels", stats.Parse.IgnoredLabels},
				{"discarded targets", stats.Parse.DiscardedTargets},
				{"elements", stats.Elements},
				{"lines", stats.Lines},
				{"duration", stats.Duration.Round(time.Millisecond)},
			}
			for _, r := range rows {
				fmt.Fprintf(tw, "%s:\t%v\n", r.name, r.value)
			}
			return tw.Flush()
		},
	}
}
