// Package saldo loads the SALDO morphological lexicon from its LMF XML
// distribution and links it into a read-only sense graph.
//
// Loading is two passes. The streaming pass turns element events into
// entries and lemgrams; the linking pass resolves each entry's primary and
// secondary descriptors into edges in both directions. Any failure aborts
// the load and no partial lexicon is returned.
package saldo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spraakbanken/saldowsd/internal/source"
	"github.com/spraakbanken/saldowsd/internal/xmlreader"
)

// Stats reports what a load produced.
type Stats struct {
	Parse    ParseStats
	Link     LinkStats
	Elements int
	Lines    int
	Duration time.Duration
}

type options struct {
	root   EntryID
	log    *slog.Logger
	format source.Format
	stats  *Stats
}

// Option configures Load and LoadReader.
type Option func(*options)

// WithRoot overrides the sentinel root id (default PRIM..1).
func WithRoot(id EntryID) Option {
	return func(o *options) {
		if id != "" {
			o.root = id
		}
	}
}

// WithLogger sets the logger for load progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithFormat forces the input compression format instead of detecting it.
func WithFormat(f source.Format) Option {
	return func(o *options) { o.format = f }
}

// WithStats stores load statistics in s when the load succeeds.
func WithStats(s *Stats) Option {
	return func(o *options) { o.stats = s }
}

func newOptions(opts []Option) options {
	o := options{
		root:   DefaultRoot,
		log:    slog.Default(),
		format: source.FormatAuto,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads the lexicon stored at path, decompressing it if needed.
func Load(ctx context.Context, path string, opts ...Option) (*Lexicon, error) {
	o := newOptions(opts)

	rc, err := source.Open(path, o.format)
	if err != nil {
		loadTotal.WithLabelValues(resultLabel(ErrSourceUnavailable)).Inc()
		return nil, &LoadError{Kind: ErrSourceUnavailable, Err: err}
	}
	defer rc.Close()

	return load(ctx, rc, path, o)
}

// LoadReader reads the lexicon from r. Compressed streams are detected
// unless WithFormat says otherwise.
func LoadReader(ctx context.Context, r io.Reader, opts ...Option) (*Lexicon, error) {
	o := newOptions(opts)

	rc, err := source.NewReader(r, o.format)
	if err != nil {
		loadTotal.WithLabelValues(resultLabel(ErrSourceUnavailable)).Inc()
		return nil, &LoadError{Kind: ErrSourceUnavailable, Err: err}
	}
	defer rc.Close()

	return load(ctx, rc, "reader", o)
}

func load(ctx context.Context, r io.Reader, name string, o options) (lex *Lexicon, err error) {
	ctx, span := tracer.Start(ctx, "saldo.Load",
		trace.WithAttributes(
			attribute.String("saldo.source", name),
			attribute.String("saldo.root", string(o.root)),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		loadTotal.WithLabelValues(resultLabel(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		span.SetStatus(codes.Ok, "")
	}()

	log := o.log.With(slog.String("source", name))
	log.Info("saldo load started", slog.String("root", string(o.root)))

	raw, pstats, xstats, err := parsePhase(ctx, r, log)
	if err != nil {
		return nil, err
	}

	lstats, err := linkPhase(ctx, raw, o.root, log)
	if err != nil {
		return nil, err
	}

	lex = newLexicon(raw, o.root)
	lexiconEntries.Set(float64(lex.Len()))
	lexiconLemgrams.Set(float64(lex.LemgramCount()))

	stats := Stats{
		Parse:    pstats,
		Link:     lstats,
		Elements: xstats.Elements,
		Lines:    xstats.Lines,
		Duration: time.Since(start),
	}
	if o.stats != nil {
		*o.stats = stats
	}

	log.Info("saldo load finished",
		slog.Int("entries", lex.Len()),
		slog.Int("lemgrams", lex.LemgramCount()),
		slog.Int("primary_edges", lstats.PrimaryEdges),
		slog.Int("secondary_edges", lstats.SecondaryEdges),
		slog.Duration("duration", stats.Duration),
	)

	return lex, nil
}

func parsePhase(ctx context.Context, r io.Reader, log *slog.Logger) (*rawLexicon, ParseStats, xmlreader.Stats, error) {
	ctx, span := tracer.Start(ctx, "saldo.parse")
	defer span.End()

	start := time.Now()
	p := newParser(log)
	xstats, err := xmlreader.New(xmlreader.WithLogger(log)).Parse(ctx, r, p)
	loadDuration.WithLabelValues("parse").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, p.stats, xstats, classify(err)
	}

	span.SetAttributes(
		attribute.Int("saldo.records", p.stats.Records),
		attribute.Int("saldo.lemgrams", p.stats.Lemgrams),
	)
	log.Debug("saldo parse finished",
		slog.Int("records", p.stats.Records),
		slog.Int("lemgrams", p.stats.Lemgrams),
		slog.Int("ignored_labels", p.stats.IgnoredLabels),
		slog.Int("discarded_targets", p.stats.DiscardedTargets),
		slog.Int("lines", xstats.Lines),
	)
	return p.raw, p.stats, xstats, nil
}

func linkPhase(ctx context.Context, raw *rawLexicon, root EntryID, log *slog.Logger) (LinkStats, error) {
	_, span := tracer.Start(ctx, "saldo.link")
	defer span.End()

	start := time.Now()
	stats, err := link(raw, root)
	loadDuration.WithLabelValues("link").Observe(time.Since(start).Seconds())
	if err != nil {
		return stats, err
	}

	log.Debug("saldo link finished",
		slog.Int("primary_edges", stats.PrimaryEdges),
		slog.Int("secondary_edges", stats.SecondaryEdges),
		slog.Int("root_skipped", stats.RootSkipped),
	)
	return stats, nil
}

// classify maps a streaming-pass failure onto a LoadError carrying the
// input line. Context cancellation passes through unchanged.
func classify(err error) error {
	line := 0
	var xe *xmlreader.Error
	if errors.As(err, &xe) {
		line = xe.Line
	}

	var le *LoadError
	if errors.As(err, &le) {
		if le.Line == 0 {
			le.Line = line
		}
		return le
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("saldo: load: %w", err)
	}

	cause := err
	if xe != nil {
		cause = xe.Err
	}
	if errors.Is(err, xmlreader.ErrMalformed) {
		return &LoadError{Kind: ErrMalformedDocument, Line: line, Err: cause}
	}
	return &LoadError{Kind: ErrSourceUnavailable, Line: line, Err: cause}
}
