package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dvdash/dashboard/internal/http/handlers"
	"github.com/go-chi/chi/v5/middleware"
)

// LogProvider provides request logger for middleware.
type LogProvider interface {
	Logger() *slog.Logger
}

// RequestLogger logs structured request/response metadata. Page refreshes
// and metric scrapes log at debug so an unattended display stays quiet.
func RequestLogger(provider LogProvider) func(http.Handler) http.Handler {
	logger := slog.Default()
	if provider != nil && provider.Logger() != nil {
		logger = provider.Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startedAt := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			if r.Method == http.MethodGet && wrapped.status < http.StatusBadRequest {
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level,
				"http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"bytes", wrapped.size,
				"duration_ms", time.Since(startedAt).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// StripForwardedPrefix removes the path prefix a reverse proxy announces in
// X-Forwarded-Prefix, so the page can be mounted below a site path.
func StripForwardedPrefix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := strings.TrimRight(strings.TrimSpace(r.Header.Get("X-Forwarded-Prefix")), "/")
		if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
			r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RecoverJSON turns a handler panic into the API error envelope. A panic
// after the response has started only aborts the connection, and
// http.ErrAbortHandler is passed through for the server to handle.
func RecoverJSON(provider LogProvider) func(http.Handler) http.Handler {
	logger := slog.Default()
	if provider != nil && provider.Logger() != nil {
		logger = provider.Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				requestID := middleware.GetReqID(r.Context())
				logger.Error("handler panic",
					"panic", fmt.Sprint(recovered),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", requestID,
					"stack", string(debug.Stack()),
				)
				if rec.started {
					panic(http.ErrAbortHandler)
				}
				message := "Internal server error"
				if requestID != "" {
					message += " (request " + requestID + ")"
				}
				handlers.WriteError(w, http.StatusInternalServerError, "internal_error", message)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder remembers the status and body size a handler produced.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	size    int
	started bool
}

func (w *statusRecorder) WriteHeader(status int) {
	if !w.started {
		w.status = status
		w.started = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(body []byte) (int, error) {
	w.started = true
	n, err := w.ResponseWriter.Write(body)
	w.size += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
