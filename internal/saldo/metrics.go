package saldo

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("saldowsd.saldo")

var (
	loadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saldo_load_total",
		Help: "Lexicon loads by result",
	}, []string{"result"})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saldo_load_phase_duration_seconds",
		Help:    "Lexicon load phase duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"phase"})

	lexiconEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "saldo_lexicon_entries",
		Help: "Entries in the most recently loaded lexicon",
	})

	lexiconLemgrams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "saldo_lexicon_lemgrams",
		Help: "Lemgrams in the most recently loaded lexicon",
	})
)

var resultKinds = []struct {
	kind  error
	label string
}{
	{ErrSourceUnavailable, "source_unavailable"},
	{ErrMalformedDocument, "malformed_document"},
	{ErrMissingRequiredField, "missing_required_field"},
	{ErrDuplicateIdentity, "duplicate_identity"},
	{ErrDuplicatePrimaryReference, "duplicate_primary_reference"},
	{ErrIncompatiblePartOfSpeech, "incompatible_part_of_speech"},
	{ErrMissingPrimaryReference, "missing_primary_reference"},
	{ErrUnresolvedReference, "unresolved_reference"},
}

// resultLabel maps a load outcome to its metric label.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range resultKinds {
		if errors.Is(err, k.kind) {
			return k.label
		}
	}
	return "error"
}
