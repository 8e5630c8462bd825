package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/saldo"
	"github.com/spraakbanken/saldowsd/internal/transport/rest"
)

var errNotFound = errors.New("not found")

func newLookupCmd(c *cli) *cobra.Command {
	var byLemgram, byForm bool

	cmd := &cobra.Command{
		Use:   "lookup <id>...",
		Short: "Print entries (or lemgrams, or written forms) as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if byLemgram && byForm {
				return errors.New("--lemgram and --form are mutually exclusive")
			}

			lex, err := c.loadLexicon(cmd, nil)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			var missing []string
			for _, arg := range args {
				v, ok := lookup(lex, arg, byLemgram, byForm)
				if !ok {
					missing = append(missing, arg)
					continue
				}
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("encode %s: %w", arg, err)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("%q: %w", missing, errNotFound)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&byLemgram, "lemgram", false, "treat arguments as lemgram ids")
	cmd.Flags().BoolVar(&byForm, "form", false, "treat arguments as written forms")
	return cmd
}

func lookup(lex *saldo.Lexicon, arg string, byLemgram, byForm bool) (any, bool) {
	switch {
	case byLemgram:
		l, ok := lex.Lemgram(saldo.LemgramID(arg))
		if !ok {
			return nil, false
		}
		return rest.NewLemgramResponse(l), true
	case byForm:
		lemgrams := lex.LemgramsByForm(arg)
		if len(lemgrams) == 0 {
			return nil, false
		}
		resp := rest.FormResponse{Form: arg}
		for _, l := range lemgrams {
			resp.Lemgrams = append(resp.Lemgrams, rest.NewLemgramResponse(l))
		}
		return resp, true
	default:
		e, ok := lex.Entry(saldo.EntryID(arg))
		if !ok {
			return nil, false
		}
		return rest.NewEntryResponse(e), true
	}
}
