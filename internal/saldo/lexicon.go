package saldo

import (
	"iter"
	"slices"
)

// Lexicon is the linked, read-only SALDO dictionary graph.
// It is never mutated after Load returns, so concurrent readers need no
// locking. Accessors return copies.
type Lexicon struct {
	root       EntryID
	ids        []EntryID
	entries    map[EntryID]*Entry
	lemgrams   map[LemgramID]*Lemgram
	lemgramIDs []LemgramID
	byForm     map[string][]LemgramID
}

func newLexicon(raw *rawLexicon, root EntryID) *Lexicon {
	return &Lexicon{
		root:       root,
		ids:        raw.ids,
		entries:    raw.entries,
		lemgrams:   raw.lemgrams,
		lemgramIDs: raw.lemgramIDs,
		byForm:     raw.byForm,
	}
}

// Root returns the sentinel entry id used during linking.
func (l *Lexicon) Root() EntryID { return l.root }

// Len returns the number of entries.
func (l *Lexicon) Len() int { return len(l.ids) }

// LemgramCount returns the number of distinct lemgrams.
func (l *Lexicon) LemgramCount() int { return len(l.lemgramIDs) }

// Entry returns the entry with the given id.
func (l *Lexicon) Entry(id EntryID) (Entry, bool) {
	e, ok := l.entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Contains reports whether id names an entry.
func (l *Lexicon) Contains(id EntryID) bool {
	_, ok := l.entries[id]
	return ok
}

// Lemgram returns the lemgram with the given id.
func (l *Lexicon) Lemgram(id LemgramID) (Lemgram, bool) {
	lg, ok := l.lemgrams[id]
	if !ok {
		return Lemgram{}, false
	}
	return lg.snapshot(), true
}

// LemgramsByForm returns every lemgram whose written form is exactly form,
// in input order.
func (l *Lexicon) LemgramsByForm(form string) []Lemgram {
	ids := l.byForm[form]
	if len(ids) == 0 {
		return nil
	}
	out := make([]Lemgram, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.lemgrams[id].snapshot())
	}
	return out
}

// IDs returns entry ids in input order.
func (l *Lexicon) IDs() []EntryID { return slices.Clone(l.ids) }

// Entries yields every entry in input order.
func (l *Lexicon) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, id := range l.ids {
			if !yield(l.entries[id].snapshot()) {
				return
			}
		}
	}
}

// Lemgrams yields every lemgram in first-seen order.
func (l *Lexicon) Lemgrams() iter.Seq[Lemgram] {
	return func(yield func(Lemgram) bool) {
		for _, id := range l.lemgramIDs {
			if !yield(l.lemgrams[id].snapshot()) {
				return
			}
		}
	}
}
