package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dvdash/dashboard/internal/dashboard"
	"github.com/dvdash/dashboard/internal/model"
	"github.com/dvdash/dashboard/internal/view"
)

// Tables reads the reconciled table views.
type Tables interface {
	Tables(ctx context.Context) ([]view.Table, error)
	Table(ctx context.Context, name model.TableName) (view.Table, error)
}

// Feed exposes the connection state and the manual connect trigger.
type Feed interface {
	Connect()
	Connected() bool
	LastMessageAt() (time.Time, bool)
	Endpoint() string
}

// UptimeSource publishes the extrapolated feed uptime.
type UptimeSource interface {
	Uptime() dashboard.UptimeView
}

// Pinger checks the table store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Branding carries the static site strings shown in the page header.
type Branding struct {
	SiteLabel  string
	SysopEmail string
	LogoFile   string
	FeedHost   string
}

// API groups HTTP handlers and dependencies.
type API struct {
	tables   Tables
	feed     Feed
	uptime   UptimeSource
	store    Pinger
	branding Branding
	logger   *slog.Logger
}

// New creates HTTP handlers with explicit dependencies.
func New(
	tables Tables,
	feed Feed,
	uptime UptimeSource,
	store Pinger,
	branding Branding,
	logger *slog.Logger,
) *API {
	return &API{
		tables:   tables,
		feed:     feed,
		uptime:   uptime,
		store:    store,
		branding: branding,
		logger:   logger,
	}
}

// Logger returns request logger used by HTTP middleware.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

// Health reports liveness, the feed connection and the table store.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":    "ok",
		"connected": a.feed.Connected(),
		"endpoint":  a.feed.Endpoint(),
	}
	if at, ok := a.feed.LastMessageAt(); ok {
		payload["last_message_at"] = at
	}
	if a.store != nil {
		if err := a.store.Ping(r.Context()); err != nil {
			a.logger.Warn("store ping failed", "err", err)
			WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "Table store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes the {"error":{"code","message"}} envelope used by every
// JSON endpoint.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
