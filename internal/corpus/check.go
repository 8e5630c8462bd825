package corpus

import (
	"cmp"
	"context"
	"slices"

	"github.com/spraakbanken/saldowsd/internal/saldo"
)

// SenseIndex reports whether a sense id exists. *saldo.Lexicon satisfies it.
type SenseIndex interface {
	Contains(id saldo.EntryID) bool
}

// UnknownSense is a sense id missing from the index with its frequency.
type UnknownSense struct {
	ID    string
	Count int
}

// Report summarizes a corpus check.
type Report struct {
	Sentences       int
	Tokens          int
	AnnotatedTokens int
	KnownSenses     int
	UnknownSenses   int
	Unknown         []UnknownSense
}

// Check reads the corpus batchSize sentences at a time and counts candidate
// senses that idx does not know. Unknown ids are sorted by descending count.
func Check(ctx context.Context, r *Reader, idx SenseIndex, batchSize int) (Report, error) {
	var rep Report
	unknown := make(map[string]int)

	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		batch, err := r.ReadSentences(batchSize)
		if err != nil {
			return rep, err
		}
		if len(batch) == 0 {
			break
		}

		for _, sentence := range batch {
			rep.Sentences++
			for _, tok := range sentence {
				rep.Tokens++
				if len(tok.PossibleSenses) > 0 {
					rep.AnnotatedTokens++
				}
				for _, s := range tok.PossibleSenses {
					if idx.Contains(saldo.EntryID(s)) {
						rep.KnownSenses++
						continue
					}
					rep.UnknownSenses++
					unknown[s]++
				}
			}
		}
	}

	rep.Unknown = make([]UnknownSense, 0, len(unknown))
	for id, n := range unknown {
		rep.Unknown = append(rep.Unknown, UnknownSense{ID: id, Count: n})
	}
	slices.SortFunc(rep.Unknown, func(a, b UnknownSense) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return rep, nil
}
