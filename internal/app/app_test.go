package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraakbanken/saldowsd/internal/config"
	"github.com/spraakbanken/saldowsd/internal/saldo"
	"github.com/spraakbanken/saldowsd/internal/transport/rest"
)

func fixturePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "saldo", "testdata", "mini.xml")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadLexicon(t *testing.T) {
	t.Parallel()

	var stats saldo.Stats
	lex, err := LoadLexicon(context.Background(), config.LexiconConfig{
		Path:   fixturePath(),
		Format: "auto",
		Root:   "PRIM..1",
	}, discardLogger(), &stats)
	require.NoError(t, err)
	assert.Equal(t, 6, lex.Len())
	assert.Equal(t, 6, stats.Parse.Records)
}

func TestLoadLexicon_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadLexicon(context.Background(), config.LexiconConfig{Root: "PRIM..1"}, discardLogger(), nil)
	assert.ErrorIs(t, err, ErrNoLexiconPath)

	_, err = LoadLexicon(context.Background(), config.LexiconConfig{Path: fixturePath(), Format: "rar"}, discardLogger(), nil)
	assert.Error(t, err)

	_, err = LoadLexicon(context.Background(), config.LexiconConfig{Path: "/nonexistent/saldo.xml"}, discardLogger(), nil)
	assert.ErrorIs(t, err, saldo.ErrSourceUnavailable)
}

func TestLexiconHolder(t *testing.T) {
	t.Parallel()

	var h LexiconHolder
	assert.Nil(t, h.Current())

	lex, err := LoadLexicon(context.Background(), config.LexiconConfig{Path: fixturePath()}, discardLogger(), nil)
	require.NoError(t, err)
	h.Store(lex)
	assert.Same(t, lex, h.Current())
}

func startServe(t *testing.T, ctx context.Context, load loadFunc) (string, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	holder := &LexiconHolder{}
	logger := discardLogger()
	srv := &http.Server{Handler: rest.NewRouter(
		rest.NewHealthHandler(holder, nil, "test"),
		rest.NewLexiconHandler(holder, nil, logger),
		logger,
	)}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, holder, load, time.Second, logger) }()
	return "http://" + ln.Addr().String(), done
}

func statusOf(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestServe_ReadyAfterLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	base, done := startServe(t, ctx, func(ctx context.Context) (*saldo.Lexicon, error) {
		<-release
		return LoadLexicon(ctx, config.LexiconConfig{Path: fixturePath()}, discardLogger(), nil)
	})

	assert.Equal(t, http.StatusOK, statusOf(t, base+"/live"))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, base+"/ready"))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, base+"/entries/hund..1"))

	close(release)
	require.Eventually(t, func() bool {
		return statusOf(t, base+"/ready") == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, http.StatusOK, statusOf(t, base+"/entries/hund..1"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServe_LoadFailureStopsServer(t *testing.T) {
	loadErr := errors.New("broken lexicon")
	_, done := startServe(t, context.Background(), func(context.Context) (*saldo.Lexicon, error) {
		return nil, loadErr
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, loadErr)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after load failure")
	}
}

func TestServe_RequiresLexiconPath(t *testing.T) {
	t.Parallel()

	err := Serve(context.Background(), &config.Config{}, discardLogger())
	assert.ErrorIs(t, err, ErrNoLexiconPath)
}
