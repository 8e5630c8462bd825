package saldo

import "slices"

// LemgramID identifies a lemma/part-of-speech pairing, e.g. "hund..nn.1".
type LemgramID string

// Lemgram is a base form with its inflection data, shared by every sense it
// realizes.
type Lemgram struct {
	id          LemgramID
	pos         string
	paradigm    string
	hasParadigm bool
	writtenForm string
	entries     []EntryID
}

func newLemgram(id LemgramID, pos string, paradigm *string, writtenForm string) *Lemgram {
	l := &Lemgram{id: id, pos: pos, writtenForm: writtenForm}
	if paradigm != nil {
		l.paradigm = *paradigm
		l.hasParadigm = true
	}
	return l
}

func (l Lemgram) ID() LemgramID { return l.id }

func (l Lemgram) PartOfSpeech() string { return l.pos }

// Paradigm returns the inflection paradigm when the lexicon listed one.
func (l Lemgram) Paradigm() (string, bool) { return l.paradigm, l.hasParadigm }

func (l Lemgram) WrittenForm() string { return l.writtenForm }

// Entries returns the owning entries in the order they were committed.
func (l Lemgram) Entries() []EntryID { return slices.Clone(l.entries) }

func (l *Lemgram) addEntry(id EntryID) { l.entries = append(l.entries, id) }

func (l *Lemgram) snapshot() Lemgram {
	c := *l
	c.entries = slices.Clone(l.entries)
	return c
}
