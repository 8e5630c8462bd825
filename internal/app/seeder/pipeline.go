package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraakbanken/saldowsd/internal/domain"
	"github.com/spraakbanken/saldowsd/internal/saldo"
)

// allPhases defines the canonical execution order. Relations and lemgram
// owners reference entries, so entries go first.
var allPhases = []string{"entries", "relations", "lemgrams"}

// Config holds pipeline settings.
type Config struct {
	BatchSize int
	DryRun    bool
	// Keep is how many completed snapshots survive pruning. Zero disables pruning.
	Keep int
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline writes a linked lexicon into the store as a new snapshot.
type Pipeline struct {
	log     *slog.Logger
	repo    LexiconStore
	tx      TxRunner
	cfg     Config
	results map[string]PhaseResult
}

// NewPipeline creates a new Pipeline. tx may be nil, in which case phases
// run without a surrounding transaction.
func NewPipeline(log *slog.Logger, repo LexiconStore, tx TxRunner, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		repo:    repo,
		tx:      tx,
		cfg:     cfg,
		results: make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any phase recorded an error.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run stores lex as a new snapshot named after source and returns its load
// id. In dry-run mode nothing is written and uuid.Nil is returned. A failed
// phase marks the snapshot failed and stops the run.
func (p *Pipeline) Run(ctx context.Context, lex *saldo.Lexicon, source string) (uuid.UUID, error) {
	loadID := uuid.New()
	rows := toRows(loadID, lex)

	if p.cfg.DryRun {
		p.results["entries"] = PhaseResult{Skipped: len(rows.entries)}
		p.results["relations"] = PhaseResult{Skipped: len(rows.relations)}
		p.results["lemgrams"] = PhaseResult{Skipped: len(rows.lemgrams) + len(rows.owners)}
		p.log.Info("dry run, nothing written",
			slog.Int("entries", len(rows.entries)),
			slog.Int("relations", len(rows.relations)),
			slog.Int("lemgrams", len(rows.lemgrams)),
		)
		return uuid.Nil, nil
	}

	err := p.repo.CreateLoad(ctx, domain.LexiconLoad{
		ID:        loadID,
		Source:    source,
		Root:      string(lex.Root()),
		Status:    domain.LoadStatusRunning,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create load: %w", err)
	}

	for _, phase := range allPhases {
		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", phase))

		var result PhaseResult
		result.Err = p.inTx(ctx, func(ctx context.Context) error {
			var err error
			switch phase {
			case "entries":
				result.Inserted, err = p.runEntries(ctx, rows)
			case "relations":
				result.Inserted, err = p.runRelations(ctx, rows)
			case "lemgrams":
				result.Inserted, err = p.runLemgrams(ctx, rows)
			}
			return err
		})
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			p.log.Warn("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			if err := p.repo.FailLoad(context.WithoutCancel(ctx), loadID); err != nil {
				p.log.Error("mark load failed", slog.String("load_id", loadID.String()), slog.String("error", err.Error()))
			}
			return loadID, fmt.Errorf("phase %s: %w", phase, result.Err)
		}

		p.log.Info("phase completed",
			slog.String("phase", phase),
			slog.Int("inserted", result.Inserted),
			slog.Duration("duration", result.Duration),
		)
	}

	if err := p.repo.CompleteLoad(ctx, loadID, len(rows.entries), len(rows.lemgrams), len(rows.relations)); err != nil {
		return loadID, fmt.Errorf("complete load: %w", err)
	}

	if p.cfg.Keep > 0 {
		pruned, err := p.repo.PruneLoads(ctx, p.cfg.Keep)
		if err != nil {
			p.log.Warn("prune old loads failed", slog.String("error", err.Error()))
		} else if pruned > 0 {
			p.log.Info("pruned old loads", slog.Int("count", pruned))
		}
	}

	p.log.Info("pipeline completed", slog.String("load_id", loadID.String()), slog.Int("phases_run", len(allPhases)))
	return loadID, nil
}

func (p *Pipeline) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.tx == nil {
		return fn(ctx)
	}
	return p.tx.RunInTx(ctx, fn)
}

func (p *Pipeline) runEntries(ctx context.Context, rows snapshotRows) (int, error) {
	n, err := batchProcess(rows.entries, p.cfg.BatchSize, func(batch []domain.StoredEntry) (int, error) {
		return p.repo.BulkInsertEntries(ctx, batch)
	})
	if err != nil {
		return n, fmt.Errorf("insert entries: %w", err)
	}
	return n, nil
}

func (p *Pipeline) runRelations(ctx context.Context, rows snapshotRows) (int, error) {
	n, err := batchProcess(rows.relations, p.cfg.BatchSize, func(batch []domain.StoredRelation) (int, error) {
		return p.repo.BulkInsertRelations(ctx, batch)
	})
	if err != nil {
		return n, fmt.Errorf("insert relations: %w", err)
	}
	return n, nil
}

// runLemgrams inserts lemgrams, then their owner links.
func (p *Pipeline) runLemgrams(ctx context.Context, rows snapshotRows) (int, error) {
	total, err := batchProcess(rows.lemgrams, p.cfg.BatchSize, func(batch []domain.StoredLemgram) (int, error) {
		return p.repo.BulkInsertLemgrams(ctx, batch)
	})
	if err != nil {
		return total, fmt.Errorf("insert lemgrams: %w", err)
	}

	n, err := batchProcess(rows.owners, p.cfg.BatchSize, func(batch []domain.StoredLemgramOwner) (int, error) {
		return p.repo.BulkInsertLemgramOwners(ctx, batch)
	})
	total += n
	if err != nil {
		return total, fmt.Errorf("insert lemgram owners: %w", err)
	}
	return total, nil
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
