package saldo

import "slices"

// EntryID identifies a sense entry, e.g. "hund..1".
type EntryID string

// DefaultRoot is the sentinel entry at the top of the primary hierarchy.
const DefaultRoot EntryID = "PRIM..1"

// Entry is one sense of the lexicon with its links to other senses.
//
// Primary is the single more central sense; Secondary lists additional
// descriptors. The inverse lists name every entry that points here.
type Entry struct {
	id       EntryID
	mf       EntryID
	hasMF    bool
	pf       []EntryID
	invMF    []EntryID
	invPF    []EntryID
	lemgrams []LemgramID
}

// ID returns the entry identity.
func (e Entry) ID() EntryID { return e.id }

// Primary returns the primary descriptor. Only the root has none.
func (e Entry) Primary() (EntryID, bool) { return e.mf, e.hasMF }

// Secondary returns the secondary descriptors in first-seen order.
func (e Entry) Secondary() []EntryID { return slices.Clone(e.pf) }

// InversePrimary returns the entries whose primary descriptor is this entry.
func (e Entry) InversePrimary() []EntryID { return slices.Clone(e.invMF) }

// InverseSecondary returns the entries listing this entry as a secondary descriptor.
func (e Entry) InverseSecondary() []EntryID { return slices.Clone(e.invPF) }

// Lemgrams returns the lemgrams realizing this sense.
func (e Entry) Lemgrams() []LemgramID { return slices.Clone(e.lemgrams) }

func (e *Entry) setPrimary(id EntryID) {
	e.mf = id
	e.hasMF = true
}

func (e *Entry) addSecondary(id EntryID) { e.pf = append(e.pf, id) }

func (e *Entry) addInversePrimary(id EntryID) { e.invMF = append(e.invMF, id) }

func (e *Entry) addInverseSecondary(id EntryID) { e.invPF = append(e.invPF, id) }

// snapshot returns a copy that shares no slices with e.
func (e *Entry) snapshot() Entry {
	return Entry{
		id:       e.id,
		mf:       e.mf,
		hasMF:    e.hasMF,
		pf:       slices.Clone(e.pf),
		invMF:    slices.Clone(e.invMF),
		invPF:    slices.Clone(e.invPF),
		lemgrams: slices.Clone(e.lemgrams),
	}
}
