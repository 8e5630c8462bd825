package seeder

import (
	"github.com/google/uuid"

	"github.com/spraakbanken/saldowsd/internal/domain"
	"github.com/spraakbanken/saldowsd/internal/saldo"
)

// snapshotRows is a lexicon flattened into table rows.
type snapshotRows struct {
	entries   []domain.StoredEntry
	relations []domain.StoredRelation
	lemgrams  []domain.StoredLemgram
	owners    []domain.StoredLemgramOwner
}

// toRows flattens lex in lexicon order. Only forward edges are stored;
// inverse edges are recovered by querying on the target column.
func toRows(loadID uuid.UUID, lex *saldo.Lexicon) snapshotRows {
	rows := snapshotRows{
		entries:  make([]domain.StoredEntry, 0, lex.Len()),
		lemgrams: make([]domain.StoredLemgram, 0, lex.LemgramCount()),
	}

	type ownership struct{ lemgram, entry string }
	entryPos := make(map[ownership]int)

	pos := 0
	for e := range lex.Entries() {
		for i, lg := range e.Lemgrams() {
			entryPos[ownership{string(lg), string(e.ID())}] = i
		}
		row := domain.StoredEntry{LoadID: loadID, ID: string(e.ID()), Position: pos}
		if mf, ok := e.Primary(); ok {
			s := string(mf)
			row.Primary = &s
			rows.relations = append(rows.relations, domain.StoredRelation{
				LoadID:   loadID,
				EntryID:  string(e.ID()),
				TargetID: s,
				Kind:     domain.RelationPrimary,
				Position: 0,
			})
		}
		for i, pf := range e.Secondary() {
			rows.relations = append(rows.relations, domain.StoredRelation{
				LoadID:   loadID,
				EntryID:  string(e.ID()),
				TargetID: string(pf),
				Kind:     domain.RelationSecondary,
				Position: i,
			})
		}
		rows.entries = append(rows.entries, row)
		pos++
	}

	pos = 0
	for l := range lex.Lemgrams() {
		row := domain.StoredLemgram{
			LoadID:         loadID,
			ID:             string(l.ID()),
			PartOfSpeech:   l.PartOfSpeech(),
			WrittenForm:    l.WrittenForm(),
			FormNormalized: domain.NormalizeForm(l.WrittenForm()),
			Position:       pos,
		}
		if p, ok := l.Paradigm(); ok {
			row.Paradigm = &p
		}
		for i, owner := range l.Entries() {
			rows.owners = append(rows.owners, domain.StoredLemgramOwner{
				LoadID:        loadID,
				LemgramID:     string(l.ID()),
				EntryID:       string(owner),
				Position:      i,
				EntryPosition: entryPos[ownership{string(l.ID()), string(owner)}],
			})
		}
		rows.lemgrams = append(rows.lemgrams, row)
		pos++
	}

	return rows
}
