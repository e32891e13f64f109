package app

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/exprbridge/internal/config"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/testutil"
	"github.com/specialistvlad/exprbridge/internal/wire"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config), opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Engine.MaintenanceSchedule = "off"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))

	logs := &testutil.SafeBuffer{}
	a, err := NewApp(context.Background(), logs, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a, logs
}

func postEvaluate(t *testing.T, h http.Handler, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateHandler_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, nil)

	// --- Act ---
	rec := postEvaluate(t, a.Handler(), `{"expression":"a+b","inputs":["a","b"],"rows":[["1","2"],["x","2"]]}`, nil)

	// --- Assert ---
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	require.NoError(t, err, "a request ID is always assigned")

	resp, err := wire.DecodeResponse(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "a + b", resp.Canonical)
	require.Equal(t, "3", resp.Results[0].Result)
	require.Equal(t, diag.KindTypeCoercion, resp.Results[1].Diagnostic.Kind)
	require.Equal(t, 1, a.Cache().Len())
}

func TestEvaluateHandler_KeepsValidRequestID(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	id := uuid.NewString()

	rec := postEvaluate(t, a.Handler(), `{"expression":"1","inputs":[],"rows":[]}`, http.Header{RequestIDHeader: {id}})

	require.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestEvaluateHandler_CompileDiagnosticIsNotAnHTTPError(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)

	rec := postEvaluate(t, a.Handler(), `{"expression":"a + b","inputs":["a"],"rows":[["1"]]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp, err := wire.DecodeResponse(rec.Body)
	require.NoError(t, err)
	require.Equal(t, diag.KindUnboundIdentifier, resp.Compile.Kind)
	require.Equal(t, diag.Span{Start: 4, End: 5}, resp.Compile.Span)
}

func TestEvaluateHandler_RejectsBadRequests(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, func(c *config.Config) { c.Server.MaxBodyBytes = 64 })

	testCases := []struct {
		name string
		body string
		code int
	}{
		{"not json", "nope", http.StatusBadRequest},
		{"unknown field", `{"expr":"a"}`, http.StatusBadRequest},
		{"too large", `{"expression":"` + strings.Repeat("1", 128) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := postEvaluate(t, a.Handler(), tc.body, nil)
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)
	h := a.Handler()
	postEvaluate(t, h, `{"expression":"1","inputs":[],"rows":[[]]}`, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `exprbridge_http_requests_total{code="200",route="/evaluate"} 1`)
	require.Contains(t, body, `exprbridge_engine_evaluate_total{kind="none",outcome="ok"} 1`)
	require.Contains(t, body, "exprbridge_engine_cache_misses_total 1")
}

func TestEvaluateHandler_RecordsJournal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "journal.db")
	a, _ := newTestApp(t, func(c *config.Config) { c.Journal.Path = path })

	// --- Act ---
	postEvaluate(t, a.Handler(), `{"expression":"a * 2","inputs":["a"],"rows":[["1"],["2"]]}`, nil)
	postEvaluate(t, a.Handler(), `{"expression":"nope(","inputs":[],"rows":[]}`, nil)

	// --- Assert ---
	entries, err := a.Journal().Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, diag.KindSyntax, entries[0].Diagnostic.Kind)
	require.Equal(t, "4", entries[1].Result)
	require.Equal(t, []string{"2"}, entries[1].Values)
	require.Equal(t, entries[1].RequestID, entries[2].RequestID)

	a.Maintain(context.Background())
	entries, err = a.Journal().Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3, "fresh entries survive pruning")
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, logs := newTestApp(t, func(c *config.Config) { c.Engine.MaintenanceSchedule = "@every 1h" })
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)

	// --- Act ---
	go func() { done <- a.Serve(ctx, ready) }()
	addr := <-ready
	resp, err := http.Get("http://" + addr.String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	cancel()

	// --- Assert ---
	require.Equal(t, http.StatusOK, resp.StatusCode)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	require.Contains(t, logs.String(), "Maintenance scheduler started.")
	require.Contains(t, logs.String(), "Playground server shut down gracefully.")
}

func TestReload_AppliesLevelAndCacheCapacity(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"exprbridge.hcl": "log {\n  level = \"info\"\n}\nengine {\n  cache_capacity = 4\n}\n",
	})
	path := filepath.Join(dir, "exprbridge.hcl")
	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	var logs bytes.Buffer
	a, err := NewApp(context.Background(), &logs, cfg, WithConfigPath(path))
	require.NoError(t, err)
	require.Equal(t, 4, a.Cache().Capacity())

	// --- Act ---
	require.NoError(t, os.WriteFile(path, []byte("log {\n  level = \"debug\"\n}\nengine {\n  cache_capacity = 9\n}\n"), 0o644))
	require.NoError(t, a.Reload(context.Background()))

	// --- Assert ---
	require.Equal(t, "debug", a.Config().Log.Level)
	require.Equal(t, 9, a.Cache().Capacity())
	require.True(t, a.Logger().Enabled(context.Background(), slog.LevelDebug))
}

func TestReload_WithoutConfigPath(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, nil)

	require.Error(t, a.Reload(context.Background()))
}
