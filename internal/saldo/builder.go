package saldo

import (
	"fmt"
	"slices"
)

// EntryBuilder accumulates the parts of one lexical record until it is
// complete enough to become an Entry.
type EntryBuilder struct {
	id       EntryID
	hasID    bool
	lemgrams []LemgramID
}

// NewEntryBuilder returns an empty builder.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{}
}

// SetID records the entry identity. A record carries exactly one identity,
// so a second call fails with ErrDuplicateIdentity.
func (b *EntryBuilder) SetID(id EntryID) error {
	if b.hasID {
		return &LoadError{
			Kind: ErrDuplicateIdentity,
			ID:   string(id),
			Err:  fmt.Errorf("record already identified as %q", b.id),
		}
	}
	b.id = id
	b.hasID = true
	return nil
}

// ID returns the identity set so far.
func (b *EntryBuilder) ID() (EntryID, bool) { return b.id, b.hasID }

// AddLemgram appends a lemgram realizing the entry. Repeats are ignored.
func (b *EntryBuilder) AddLemgram(id LemgramID) {
	if slices.Contains(b.lemgrams, id) {
		return
	}
	b.lemgrams = append(b.lemgrams, id)
}

// Build returns the finished entry, or ErrMissingRequiredField if no
// identity was set.
func (b *EntryBuilder) Build() (*Entry, error) {
	if !b.hasID {
		return nil, missingField("", "id")
	}
	return &Entry{
		id:       b.id,
		lemgrams: slices.Clone(b.lemgrams),
	}, nil
}
