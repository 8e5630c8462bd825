package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/spraakbanken/saldowsd/internal/domain"
	"github.com/spraakbanken/saldowsd/internal/saldo"
	"github.com/spraakbanken/saldowsd/pkg/ctxutil"
)

// LexiconSource yields the lexicon currently being served, or nil while it
// is still loading.
type LexiconSource interface {
	Current() *saldo.Lexicon
}

// SnapshotStore reads the latest persisted lexicon snapshot.
type SnapshotStore interface {
	LatestLoad(ctx context.Context) (*domain.LexiconLoad, error)
	GetEntry(ctx context.Context, loadID uuid.UUID, id string) (*domain.StoredEntryDetail, error)
	GetLemgram(ctx context.Context, loadID uuid.UUID, id string) (*domain.StoredLemgramDetail, error)
	LemgramsByForm(ctx context.Context, loadID uuid.UUID, form string) ([]domain.StoredLemgram, error)
}

// LexiconHandler serves read-only lookups against the in-memory lexicon.
// While it is loading, lookups are answered from the latest completed
// snapshot in store, if one is configured.
type LexiconHandler struct {
	lex   LexiconSource
	store SnapshotStore
	log   *slog.Logger
}

// NewLexiconHandler creates a LexiconHandler. store may be nil.
func NewLexiconHandler(lex LexiconSource, store SnapshotStore, logger *slog.Logger) *LexiconHandler {
	return &LexiconHandler{lex: lex, store: store, log: logger.With("handler", "lexicon")}
}

// EntryResponse is the JSON form of a sense entry.
type EntryResponse struct {
	ID               string   `json:"id"`
	Primary          *string  `json:"primary"`
	Secondary        []string `json:"secondary"`
	InversePrimary   []string `json:"inversePrimary"`
	InverseSecondary []string `json:"inverseSecondary"`
	Lemgrams         []string `json:"lemgrams"`
}

// LemgramResponse is the JSON form of a lemgram.
type LemgramResponse struct {
	ID           string   `json:"id"`
	PartOfSpeech string   `json:"partOfSpeech"`
	Paradigm     *string  `json:"paradigm"`
	WrittenForm  string   `json:"writtenForm"`
	Entries      []string `json:"entries"`
}

// FormResponse lists the lemgrams sharing a written form.
type FormResponse struct {
	Form     string            `json:"form"`
	Lemgrams []LemgramResponse `json:"lemgrams"`
}

// GetEntry returns one sense entry with its edges.
// GET /entries/{id}
func (h *LexiconHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.writeDomainError(w, r, domain.NewValidationError("id", "required"))
		return
	}

	lex := h.lex.Current()
	if lex == nil {
		h.fromSnapshot(w, r, func(ctx context.Context, loadID uuid.UUID) (any, error) {
			d, err := h.store.GetEntry(ctx, loadID, id)
			if err != nil {
				return nil, err
			}
			return storedEntryResponse(d), nil
		})
		return
	}

	e, found := lex.Entry(saldo.EntryID(id))
	if !found {
		h.writeDomainError(w, r, domain.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, NewEntryResponse(e))
}

// GetLemgram returns one lemgram with its owning entries.
// GET /lemgrams/{id}
func (h *LexiconHandler) GetLemgram(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.writeDomainError(w, r, domain.NewValidationError("id", "required"))
		return
	}

	lex := h.lex.Current()
	if lex == nil {
		h.fromSnapshot(w, r, func(ctx context.Context, loadID uuid.UUID) (any, error) {
			d, err := h.store.GetLemgram(ctx, loadID, id)
			if err != nil {
				return nil, err
			}
			return storedLemgramResponse(d.Lemgram, d.Entries), nil
		})
		return
	}

	l, found := lex.Lemgram(saldo.LemgramID(id))
	if !found {
		h.writeDomainError(w, r, domain.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, NewLemgramResponse(l))
}

// FormLemgrams returns every lemgram with the exact written form. Answers
// from a stored snapshot match on the folded form instead.
// GET /forms/{form}
func (h *LexiconHandler) FormLemgrams(w http.ResponseWriter, r *http.Request) {
	form := r.PathValue("form")
	if strings.TrimSpace(form) == "" {
		h.writeDomainError(w, r, domain.NewValidationError("form", "required"))
		return
	}

	lex := h.lex.Current()
	if lex == nil {
		h.fromSnapshot(w, r, func(ctx context.Context, loadID uuid.UUID) (any, error) {
			return h.storedForm(ctx, loadID, form)
		})
		return
	}

	lemgrams := lex.LemgramsByForm(form)
	if len(lemgrams) == 0 {
		h.writeDomainError(w, r, domain.ErrNotFound)
		return
	}

	resp := FormResponse{Form: form, Lemgrams: make([]LemgramResponse, 0, len(lemgrams))}
	for _, l := range lemgrams {
		resp.Lemgrams = append(resp.Lemgrams, NewLemgramResponse(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

// fromSnapshot answers a lookup from the latest completed snapshot. Without
// a store, or without any completed snapshot, the lexicon is unavailable.
func (h *LexiconHandler) fromSnapshot(w http.ResponseWriter, r *http.Request, read func(ctx context.Context, loadID uuid.UUID) (any, error)) {
	if h.store == nil {
		h.writeDomainError(w, r, domain.ErrUnavailable)
		return
	}

	ctx := r.Context()
	load, err := h.store.LatestLoad(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			ctxutil.Logger(ctx, h.log).WarnContext(ctx, "snapshot unavailable", slog.String("error", err.Error()))
		}
		h.writeDomainError(w, r, domain.ErrUnavailable)
		return
	}

	resp, err := read(ctx, load.ID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.Header().Set(SnapshotHeader, load.ID.String())
	writeJSON(w, http.StatusOK, resp)
}

func (h *LexiconHandler) storedForm(ctx context.Context, loadID uuid.UUID, form string) (FormResponse, error) {
	lemgrams, err := h.store.LemgramsByForm(ctx, loadID, form)
	if err != nil {
		return FormResponse{}, err
	}
	if len(lemgrams) == 0 {
		return FormResponse{}, domain.ErrNotFound
	}

	resp := FormResponse{Form: form, Lemgrams: make([]LemgramResponse, 0, len(lemgrams))}
	for _, l := range lemgrams {
		d, err := h.store.GetLemgram(ctx, loadID, l.ID)
		if err != nil {
			return FormResponse{}, err
		}
		resp.Lemgrams = append(resp.Lemgrams, storedLemgramResponse(d.Lemgram, d.Entries))
	}
	return resp, nil
}

func (h *LexiconHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Errors})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "lexicon is loading")
	default:
		ctxutil.Logger(r.Context(), h.log).ErrorContext(r.Context(), "lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// NewEntryResponse converts an entry to its JSON form.
func NewEntryResponse(e saldo.Entry) EntryResponse {
	resp := EntryResponse{
		ID:               string(e.ID()),
		Secondary:        entryIDs(e.Secondary()),
		InversePrimary:   entryIDs(e.InversePrimary()),
		InverseSecondary: entryIDs(e.InverseSecondary()),
		Lemgrams:         make([]string, 0, len(e.Lemgrams())),
	}
	if mf, ok := e.Primary(); ok {
		s := string(mf)
		resp.Primary = &s
	}
	for _, l := range e.Lemgrams() {
		resp.Lemgrams = append(resp.Lemgrams, string(l))
	}
	return resp
}

// NewLemgramResponse converts a lemgram to its JSON form.
func NewLemgramResponse(l saldo.Lemgram) LemgramResponse {
	resp := LemgramResponse{
		ID:           string(l.ID()),
		PartOfSpeech: l.PartOfSpeech(),
		WrittenForm:  l.WrittenForm(),
		Entries:      entryIDs(l.Entries()),
	}
	if p, ok := l.Paradigm(); ok {
		resp.Paradigm = &p
	}
	return resp
}

// SnapshotHeader names the stored snapshot that answered a lookup.
const SnapshotHeader = "X-Saldo-Snapshot"

func storedEntryResponse(d *domain.StoredEntryDetail) EntryResponse {
	return EntryResponse{
		ID:               d.Entry.ID,
		Primary:          d.Entry.Primary,
		Secondary:        nonNil(d.Secondary),
		InversePrimary:   nonNil(d.InversePrimary),
		InverseSecondary: nonNil(d.InverseSecondary),
		Lemgrams:         nonNil(d.Lemgrams),
	}
}

func storedLemgramResponse(l domain.StoredLemgram, entries []string) LemgramResponse {
	return LemgramResponse{
		ID:           l.ID,
		PartOfSpeech: l.PartOfSpeech,
		Paradigm:     l.Paradigm,
		WrittenForm:  l.WrittenForm,
		Entries:      nonNil(entries),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func entryIDs(ids []saldo.EntryID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
