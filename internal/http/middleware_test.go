package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

type bufferLogs struct{ buf bytes.Buffer }

func (b *bufferLogs) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&b.buf, nil))
}

func TestRecoverJSONWritesEnvelopeWithRequestID(t *testing.T) {
	logs := &bufferLogs{}
	h := middleware.RequestID(RecoverJSON(logs)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "internal_error" || !strings.Contains(body.Error.Message, "req-42") {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if got := logs.buf.String(); !strings.Contains(got, `"request_id":"req-42"`) || !strings.Contains(got, `"panic":"boom"`) {
		t.Fatalf("expected panic logged with request id, got %s", got)
	}
}

func TestRecoverJSONAbortsStartedResponse(t *testing.T) {
	h := RecoverJSON(&bufferLogs{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("partial"))
		panic("late")
	}))
	rec := httptest.NewRecorder()
	defer func() {
		if got := recover(); got != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler, got %v", got)
		}
		if rec.Body.String() != "partial" {
			t.Fatalf("expected no error envelope after partial body, got %q", rec.Body.String())
		}
	}()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestStripForwardedPrefix(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		path   string
		want   string
	}{
		{name: "no header", path: "/api/uptime", want: "/api/uptime"},
		{name: "trailing slash", prefix: "/dash/", path: "/dash/api/uptime", want: "/api/uptime"},
		{name: "prefix root", prefix: "/dash", path: "/dash", want: "/"},
		{name: "other path", prefix: "/dash", path: "/api/uptime", want: "/api/uptime"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := StripForwardedPrefix(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = r.URL.Path
			}))
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.prefix != "" {
				req.Header.Set("X-Forwarded-Prefix", tc.prefix)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if seen != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, seen)
			}
		})
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	logs := &bufferLogs{}
	h := RequestLogger(logs)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/reconnect", nil))
	got := logs.buf.String()
	if !strings.Contains(got, `"status":202`) || !strings.Contains(got, `"bytes":2`) {
		t.Fatalf("expected status and size in request log, got %s", got)
	}
}
