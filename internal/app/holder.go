package app

import (
	"sync/atomic"

	"github.com/spraakbanken/saldowsd/internal/saldo"
)

// LexiconHolder publishes the served lexicon to concurrent readers. It is
// empty until the first load completes.
type LexiconHolder struct {
	p atomic.Pointer[saldo.Lexicon]
}

// Current returns the held lexicon or nil.
func (h *LexiconHolder) Current() *saldo.Lexicon { return h.p.Load() }

// Store replaces the held lexicon.
func (h *LexiconHolder) Store(lex *saldo.Lexicon) { h.p.Store(lex) }
