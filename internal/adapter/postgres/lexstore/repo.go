// Package lexstore persists linked SALDO lexicon snapshots in PostgreSQL.
// Each load writes a complete snapshot keyed by a load id; readers only see
// snapshots whose load row is completed.
package lexstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/spraakbanken/saldowsd/internal/adapter/postgres"
	"github.com/spraakbanken/saldowsd/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides lexicon snapshot persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lexicon store repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ---------------------------------------------------------------------------
// Load lifecycle
// ---------------------------------------------------------------------------

// CreateLoad registers a running snapshot.
func (r *Repo) CreateLoad(ctx context.Context, load domain.LexiconLoad) error {
	query, args, err := psql.Insert("saldo_loads").
		Columns("id", "source", "root", "status", "started_at").
		Values(load.ID, load.Source, load.Root, domain.LoadStatusRunning, load.StartedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	_, err = postgres.Conn(ctx, r.pool).Exec(ctx, query, args...)
	return postgres.MapError(err, "saldo_load", load.ID.String())
}

// CompleteLoad marks the snapshot completed with its final counts.
func (r *Repo) CompleteLoad(ctx context.Context, id uuid.UUID, entries, lemgrams, relations int) error {
	return r.finishLoad(ctx, id, sq.Eq{
		"status":    domain.LoadStatusCompleted,
		"entries":   entries,
		"lemgrams":  lemgrams,
		"relations": relations,
	})
}

// FailLoad marks the snapshot failed. Its rows stay invisible to readers
// until pruned.
func (r *Repo) FailLoad(ctx context.Context, id uuid.UUID) error {
	return r.finishLoad(ctx, id, sq.Eq{"status": domain.LoadStatusFailed})
}

func (r *Repo) finishLoad(ctx context.Context, id uuid.UUID, set sq.Eq) error {
	query, args, err := psql.Update("saldo_loads").
		SetMap(set).
		Set("completed_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": domain.LoadStatusRunning}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "saldo_load", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saldo_load %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// LatestLoad returns the most recently completed snapshot.
func (r *Repo) LatestLoad(ctx context.Context) (*domain.LexiconLoad, error) {
	query, args, err := psql.Select(loadColumns...).
		From("saldo_loads").
		Where(sq.Eq{"status": domain.LoadStatusCompleted}).
		OrderBy("completed_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	load, err := scanLoad(postgres.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "saldo_load", "latest")
	}
	return load, nil
}

// GetLoad returns a snapshot by id regardless of status.
func (r *Repo) GetLoad(ctx context.Context, id uuid.UUID) (*domain.LexiconLoad, error) {
	query, args, err := psql.Select(loadColumns...).
		From("saldo_loads").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	load, err := scanLoad(postgres.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "saldo_load", id.String())
	}
	return load, nil
}

// PruneLoads deletes every snapshot except the keep most recent completed
// ones. Child rows go with ON DELETE CASCADE. Running loads are left alone.
func (r *Repo) PruneLoads(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, domain.NewValidationError("keep", "must be >= 0")
	}

	kept := psql.Select("id").
		From("saldo_loads").
		Where(sq.Eq{"status": domain.LoadStatusCompleted}).
		OrderBy("completed_at DESC").
		Limit(uint64(keep))

	query, args, err := psql.Delete("saldo_loads").
		Where(sq.NotEq{"status": domain.LoadStatusRunning}).
		Where(sq.Expr("id NOT IN (?)", kept)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "saldo_load", "prune")
	}
	return int(tag.RowsAffected()), nil
}

var loadColumns = []string{
	"id", "source", "root", "status", "entries", "lemgrams", "relations", "started_at", "completed_at",
}

func scanLoad(row pgx.Row) (*domain.LexiconLoad, error) {
	var l domain.LexiconLoad
	var status string
	err := row.Scan(&l.ID, &l.Source, &l.Root, &status, &l.Entries, &l.Lemgrams, &l.Relations, &l.StartedAt, &l.CompletedAt)
	if err != nil {
		return nil, err
	}
	l.Status = domain.LoadStatus(status)
	return &l, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetEntry returns an entry of the given snapshot with its edges and lemgrams.
// Returns domain.ErrNotFound if absent.
func (r *Repo) GetEntry(ctx context.Context, loadID uuid.UUID, id string) (*domain.StoredEntryDetail, error) {
	q := postgres.Conn(ctx, r.pool)

	query, args, err := psql.Select("load_id", "id", "primary_id", "position").
		From("saldo_entries").
		Where(sq.Eq{"load_id": loadID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d domain.StoredEntryDetail
	err = q.QueryRow(ctx, query, args...).Scan(&d.Entry.LoadID, &d.Entry.ID, &d.Entry.Primary, &d.Entry.Position)
	if err != nil {
		return nil, postgres.MapError(err, "saldo_entry", id)
	}

	if d.Secondary, err = r.relationColumn(ctx, q, "target_id", loadID, sq.Eq{"entry_id": id, "kind": domain.RelationSecondary}); err != nil {
		return nil, err
	}
	if d.InversePrimary, err = r.relationColumn(ctx, q, "entry_id", loadID, sq.Eq{"target_id": id, "kind": domain.RelationPrimary}); err != nil {
		return nil, err
	}
	if d.InverseSecondary, err = r.relationColumn(ctx, q, "entry_id", loadID, sq.Eq{"target_id": id, "kind": domain.RelationSecondary}); err != nil {
		return nil, err
	}

	lgQuery, lgArgs, err := psql.Select("lemgram_id").
		From("saldo_lemgram_entries").
		Where(sq.Eq{"load_id": loadID, "entry_id": id}).
		OrderBy("entry_position", "lemgram_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if d.Lemgrams, err = collectStrings(ctx, q, lgQuery, lgArgs); err != nil {
		return nil, postgres.MapError(err, "saldo_entry", id)
	}

	return &d, nil
}

// GetLemgram returns a lemgram of the given snapshot with its owning entries.
// Returns domain.ErrNotFound if absent.
func (r *Repo) GetLemgram(ctx context.Context, loadID uuid.UUID, id string) (*domain.StoredLemgramDetail, error) {
	q := postgres.Conn(ctx, r.pool)

	query, args, err := psql.Select(lemgramColumns...).
		From("saldo_lemgrams").
		Where(sq.Eq{"load_id": loadID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d domain.StoredLemgramDetail
	if err := scanLemgram(q.QueryRow(ctx, query, args...), &d.Lemgram); err != nil {
		return nil, postgres.MapError(err, "saldo_lemgram", id)
	}

	ownQuery, ownArgs, err := psql.Select("entry_id").
		From("saldo_lemgram_entries").
		Where(sq.Eq{"load_id": loadID, "lemgram_id": id}).
		OrderBy("position", "entry_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if d.Entries, err = collectStrings(ctx, q, ownQuery, ownArgs); err != nil {
		return nil, postgres.MapError(err, "saldo_lemgram", id)
	}

	return &d, nil
}

func (r *Repo) relationColumn(ctx context.Context, q postgres.Querier, col string, loadID uuid.UUID, where sq.Eq) ([]string, error) {
	where["load_id"] = loadID
	query, args, err := psql.Select(col).
		From("saldo_relations").
		Where(where).
		OrderBy("position", col).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	out, err := collectStrings(ctx, q, query, args)
	if err != nil {
		return nil, postgres.MapError(err, "saldo_relation", col)
	}
	return out, nil
}

// LemgramsByForm returns lemgrams of the snapshot whose folded written form
// matches form, in lexicon order.
func (r *Repo) LemgramsByForm(ctx context.Context, loadID uuid.UUID, form string) ([]domain.StoredLemgram, error) {
	normalized := domain.NormalizeForm(form)
	if normalized == "" {
		return nil, domain.NewValidationError("form", "required")
	}

	query, args, err := psql.Select(lemgramColumns...).
		From("saldo_lemgrams").
		Where(sq.Eq{"load_id": loadID, "form_normalized": normalized}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "saldo_lemgram", form)
	}
	defer rows.Close()

	var out []domain.StoredLemgram
	for rows.Next() {
		var l domain.StoredLemgram
		if err := scanLemgram(rows, &l); err != nil {
			return nil, fmt.Errorf("scan lemgram: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "saldo_lemgram", form)
	}
	return out, nil
}

var lemgramColumns = []string{"load_id", "id", "part_of_speech", "paradigm", "written_form", "form_normalized", "position"}

func scanLemgram(row pgx.Row, l *domain.StoredLemgram) error {
	return row.Scan(&l.LoadID, &l.ID, &l.PartOfSpeech, &l.Paradigm, &l.WrittenForm, &l.FormNormalized, &l.Position)
}

func collectStrings(ctx context.Context, q postgres.Querier, query string, args []any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Batch insert methods (pgx.Batch API)
// ---------------------------------------------------------------------------

// BulkInsertEntries inserts entry rows. Rows already present for the
// snapshot are skipped via ON CONFLICT DO NOTHING.
func (r *Repo) BulkInsertEntries(ctx context.Context, entries []domain.StoredEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO saldo_entries (load_id, id, primary_id, position)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (load_id, id) DO NOTHING`,
			e.LoadID, e.ID, e.Primary, e.Position,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertRelations inserts descriptor edges.
func (r *Repo) BulkInsertRelations(ctx context.Context, relations []domain.StoredRelation) (int, error) {
	if len(relations) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rel := range relations {
		batch.Queue(
			`INSERT INTO saldo_relations (load_id, entry_id, target_id, kind, position)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (load_id, entry_id, target_id, kind) DO NOTHING`,
			rel.LoadID, rel.EntryID, rel.TargetID, string(rel.Kind), rel.Position,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertLemgrams inserts lemgram rows.
func (r *Repo) BulkInsertLemgrams(ctx context.Context, lemgrams []domain.StoredLemgram) (int, error) {
	if len(lemgrams) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range lemgrams {
		batch.Queue(
			`INSERT INTO saldo_lemgrams (load_id, id, part_of_speech, paradigm, written_form, form_normalized, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (load_id, id) DO NOTHING`,
			l.LoadID, l.ID, l.PartOfSpeech, l.Paradigm, l.WrittenForm, l.FormNormalized, l.Position,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertLemgramOwners inserts lemgram to entry links.
func (r *Repo) BulkInsertLemgramOwners(ctx context.Context, owners []domain.StoredLemgramOwner) (int, error) {
	if len(owners) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, o := range owners {
		batch.Queue(
			`INSERT INTO saldo_lemgram_entries (load_id, lemgram_id, entry_id, position, entry_position)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (load_id, lemgram_id, entry_id) DO NOTHING`,
			o.LoadID, o.LemgramID, o.EntryID, o.Position, o.EntryPosition,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// sendBatchExec sends a pgx.Batch and counts affected rows from Exec results.
func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	q := postgres.Conn(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", postgres.MapError(err, "batch", fmt.Sprint(inserted)))
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}
