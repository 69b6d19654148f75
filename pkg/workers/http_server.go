package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dskvich/amethyst-telegram-bot/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type httpServer struct {
	addr    string
	handler http.Handler
}

func NewHTTPServer(addr string, handler http.Handler) *httpServer {
	return &httpServer{
		addr:    addr,
		handler: handler,
	}
}

func (h *httpServer) Name() string { return "http_server_worker" }

func (h *httpServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}

	return h.serve(ctx, ln)
}

func (h *httpServer) serve(ctx context.Context, ln net.Listener) error {
	slog.Info("Starting worker", "name", h.Name(), "addr", ln.Addr().String())
	defer slog.Info("Worker stopped", "name", h.Name())

	srv := &http.Server{
		Handler:           h.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// In-flight updates finish on their own deadline during shutdown.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutting down http server", logger.Err(err))
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}

	<-stopped
	return nil
}
