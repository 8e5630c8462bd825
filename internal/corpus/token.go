// Package corpus reads tab-separated, sense-annotated corpora: one token per
// line, sentences separated by blank lines.
package corpus

import (
	"errors"
	"fmt"
	"strings"
)

const (
	colWord   = 1
	colAffix  = 2
	colLemmas = 4
	colSenses = 5
	minCols   = 6

	empty     = "_"
	separator = "|"
	prefixTag = "(pfx)"
	suffixTag = "(sfx)"
)

// ErrMalformedLine reports a token line with too few columns.
var ErrMalformedLine = errors.New("malformed corpus line")

// LemmaToken is one corpus token with its candidate lemmas and senses.
type LemmaToken struct {
	Word           string
	PossibleLemmas []string
	PossibleSenses []string
	IsPrefix       bool
	IsSuffix       bool
}

// ParseLine parses one tab-separated token line. Columns 5 and 6 hold
// "|"-separated lemmas and senses; "_" means none.
func ParseLine(line string) (LemmaToken, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < minCols {
		return LemmaToken{}, fmt.Errorf("%w: %d columns, want at least %d", ErrMalformedLine, len(cols), minCols)
	}

	tok := LemmaToken{
		Word:           cols[colWord],
		PossibleLemmas: splitAlternatives(cols[colLemmas]),
		PossibleSenses: splitAlternatives(cols[colSenses]),
	}
	switch cols[colAffix] {
	case prefixTag:
		tok.IsPrefix = true
	case suffixTag:
		tok.IsSuffix = true
	}
	return tok, nil
}

func splitAlternatives(col string) []string {
	col = strings.TrimSpace(col)
	if col == "" || col == empty {
		return nil
	}
	var out []string
	for _, s := range strings.Split(col, separator) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// String renders the token in the six-column output layout. Position,
// word and lemgram columns are written as "_".
func (t LemmaToken) String() string {
	var b strings.Builder
	b.WriteString(empty + "\t" + empty + "\t")
	switch {
	case t.IsPrefix:
		b.WriteString(prefixTag)
	case t.IsSuffix:
		b.WriteString(suffixTag)
	default:
		b.WriteString(empty)
	}
	b.WriteString("\t" + empty + "\t")
	b.WriteString(joinAlternatives(t.PossibleLemmas))
	b.WriteString("\t")
	b.WriteString(joinAlternatives(t.PossibleSenses))
	return b.String()
}

func joinAlternatives(xs []string) string {
	if len(xs) == 0 {
		return empty
	}
	return strings.Join(xs, separator)
}
