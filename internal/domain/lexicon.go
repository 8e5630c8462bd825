package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoadStatus tracks a persisted lexicon snapshot.
type LoadStatus string

const (
	LoadStatusRunning   LoadStatus = "running"
	LoadStatusCompleted LoadStatus = "completed"
	LoadStatusFailed    LoadStatus = "failed"
)

// RelationKind distinguishes primary from secondary descriptor edges.
type RelationKind string

const (
	RelationPrimary   RelationKind = "primary"
	RelationSecondary RelationKind = "secondary"
)

// LexiconLoad is one persisted snapshot of a loaded lexicon. Rows of a
// snapshot become visible to readers once it is completed.
type LexiconLoad struct {
	ID          uuid.UUID
	Source      string
	Root        string
	Status      LoadStatus
	Entries     int
	Lemgrams    int
	Relations   int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// StoredEntry is a sense entry row.
type StoredEntry struct {
	LoadID   uuid.UUID
	ID       string
	Primary  *string
	Position int
}

// StoredRelation is a descriptor edge from EntryID to TargetID.
type StoredRelation struct {
	LoadID   uuid.UUID
	EntryID  string
	TargetID string
	Kind     RelationKind
	Position int
}

// StoredLemgram is a lemgram row with its folded form for lookups.
type StoredLemgram struct {
	LoadID         uuid.UUID
	ID             string
	PartOfSpeech   string
	Paradigm       *string
	WrittenForm    string
	FormNormalized string
	Position       int
}

// StoredLemgramOwner links a lemgram to an owning entry. Position orders
// owners within the lemgram, EntryPosition orders lemgrams within the entry.
type StoredLemgramOwner struct {
	LoadID        uuid.UUID
	LemgramID     string
	EntryID       string
	Position      int
	EntryPosition int
}

// StoredLemgramDetail is a lemgram with its owning entries in owner order.
type StoredLemgramDetail struct {
	Lemgram StoredLemgram
	Entries []string
}

// StoredEntryDetail is an entry with its edges and lemgrams, as read back
// from storage.
type StoredEntryDetail struct {
	Entry            StoredEntry
	Secondary        []string
	InversePrimary   []string
	InverseSecondary []string
	Lemgrams         []string
}
