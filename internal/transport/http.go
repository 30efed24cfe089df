// Package transport serves the read-only inspection surface over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracespace/internal/viewer"
)

// DefaultSessionTimeout bounds idle MCP sessions.
const DefaultSessionTimeout = 30 * time.Minute

const shutdownTimeout = 5 * time.Second

// StateSource returns the last published viewer state.
type StateSource interface {
	Load() *viewer.State
}

// Options configures the router.
type Options struct {
	State  StateSource
	MCP    *sdkmcp.Server
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// NewServer creates an HTTP router. /health is always public; everything
// else sits behind Auth when set.
func NewServer(opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(opts.Logger))

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		if opts.State != nil {
			r.Get("/api/state", stateHandler(opts.State))
		}
		if opts.MCP != nil {
			mcpServer := opts.MCP
			mcpHandler := sdkmcp.NewStreamableHTTPHandler(
				func(*http.Request) *sdkmcp.Server { return mcpServer },
				&sdkmcp.StreamableHTTPOptions{
					SessionTimeout: DefaultSessionTimeout,
				},
			)
			r.Handle("/mcp", mcpHandler)
			r.Handle("/mcp/*", mcpHandler)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func stateHandler(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(src.Load())
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inspect server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("inspect server shutdown", "error", err)
		return err
	}
	logger.Info("inspect server stopped")
	return nil
}
