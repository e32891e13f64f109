package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/journal"
	"github.com/specialistvlad/exprbridge/internal/wire"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Handler returns the playground routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /evaluate", a.instrument("/evaluate", http.HandlerFunc(a.evaluateHandler)))
	mux.Handle("GET /health", a.instrument("/health", http.HandlerFunc(a.healthHandler)))
	mux.Handle("GET /metrics", a.collector.Handler())
	return mux
}

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// evaluateHandler runs one wire request. Engine diagnostics are part of a
// 200 response; only malformed requests are rejected.
func (a *App) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.FromContext(ctx)

	body := http.MaxBytesReader(w, r.Body, a.Config().Server.MaxBodyBytes)
	req, err := wire.DecodeRequest(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := a.Runner().Run(ctx, req)
	a.record(ctx, req, resp)

	w.Header().Set("Content-Type", "application/json")
	if err := wire.Encode(w, resp); err != nil {
		logger.Warn("Failed to write evaluate response.", "error", err)
	}
}

// record appends the evaluated rows to the journal, if one is configured.
// Journal failures are logged, never returned to the client.
func (a *App) record(ctx context.Context, req wire.Request, resp wire.Response) {
	if a.journal == nil {
		return
	}
	id := RequestID(ctx)
	var entries []journal.Entry
	if resp.Compile.IsError {
		entries = append(entries, journal.Entry{
			RequestID:  id,
			Expression: req.Expression,
			InputNames: req.Inputs,
			Diagnostic: resp.Compile,
		})
	}
	for i, res := range resp.Results {
		entries = append(entries, journal.Entry{
			RequestID:  id,
			Expression: req.Expression,
			InputNames: req.Inputs,
			Values:     req.Rows[i],
			Result:     res.Result,
			Diagnostic: res.Diagnostic,
		})
	}
	if err := a.journal.Record(ctx, entries...); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to record evaluation journal.", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument assigns a request ID, attaches a request-scoped logger and
// records the request in metrics.
func (a *App) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := a.logger.With("request_id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = ctxlog.WithLogger(ctx, logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		a.collector.ObserveHTTPRequest(route, rec.status, time.Since(start))
		logger.Debug("Request served.", "route", route, "status", rec.status, "duration", time.Since(start))
	})
}

// startServer binds the listener and serves in the background. The bound
// address is returned so that ":0" can be used in tests.
func (a *App) startServer(ctx context.Context) (net.Addr, error) {
	cfg := a.Config().Server
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
		ReadTimeout:       cfg.ReadTimeoutDuration(),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		a.logger.Info("Playground server starting.", "address", ln.Addr().String())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Playground server failed unexpectedly.", "error", err)
		}
	}()
	return ln.Addr(), nil
}

func (a *App) closeServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Playground server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config().Server.ShutdownTimeoutDuration())
	defer cancel()

	a.logger.Info("Shutting down playground server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Playground server shutdown failed.", "error", err)
		return err
	}
	a.logger.Debug("Playground server shut down gracefully.")
	return nil
}
