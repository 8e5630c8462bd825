// Package seeder persists a loaded lexicon as a database snapshot.
package seeder

import (
	"context"

	"github.com/google/uuid"

	"github.com/spraakbanken/saldowsd/internal/domain"
)

// LexiconStore defines the repository contract consumed by the pipeline.
// All methods use only domain types. Implemented by lexstore.Repo.
type LexiconStore interface {
	// Snapshot lifecycle.
	CreateLoad(ctx context.Context, load domain.LexiconLoad) error
	CompleteLoad(ctx context.Context, id uuid.UUID, entries, lemgrams, relations int) error
	FailLoad(ctx context.Context, id uuid.UUID) error
	PruneLoads(ctx context.Context, keep int) (int, error)

	// Batch inserts. ON CONFLICT DO NOTHING.
	BulkInsertEntries(ctx context.Context, entries []domain.StoredEntry) (int, error)
	BulkInsertRelations(ctx context.Context, relations []domain.StoredRelation) (int, error)
	BulkInsertLemgrams(ctx context.Context, lemgrams []domain.StoredLemgram) (int, error)
	BulkInsertLemgramOwners(ctx context.Context, owners []domain.StoredLemgramOwner) (int, error)
}

// TxRunner runs fn inside a transaction carried by ctx. Implemented by
// postgres.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
