package api

import (
	"log/slog"
	"net/http"
	"time"
)

type Admin interface {
	Control(w http.ResponseWriter, r *http.Request)
}

type StatusPage interface {
	Show(w http.ResponseWriter, r *http.Request)
}

type Webhook interface {
	Receive(w http.ResponseWriter, r *http.Request)
}

// NewRouter serves the status page and admin actions on "/" and Telegram pushes on /webhook.
// A nil webhook leaves /webhook unrouted.
func NewRouter(page StatusPage, admin Admin, webhook Webhook) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", page.Show)
	mux.HandleFunc("POST /{$}", admin.Control)
	if webhook != nil {
		mux.HandleFunc("POST /webhook", webhook.Receive)
	}
	return withLogging(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				slog.ErrorContext(r.Context(), "HTTP handler panicked", "panic", p, "path", r.URL.Path)
				http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
			}
			slog.DebugContext(r.Context(), "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"elapsed", time.Since(start),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}
