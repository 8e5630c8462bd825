package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spraakbanken/saldowsd/internal/transport/middleware"
)

// NewRouter registers the lookup, probe and metrics routes behind the
// request id, recovery, logging and metrics middleware.
func NewRouter(health *HealthHandler, lexicon *LexiconHandler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /entries/{id}", lexicon.GetEntry)
	mux.HandleFunc("GET /lemgrams/{id}", lexicon.GetLemgram)
	mux.HandleFunc("GET /forms/{form}", lexicon.FormLemgrams)

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(),
	)(mux)
}
