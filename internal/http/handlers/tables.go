package handlers

import (
	"errors"
	"net/http"

	"github.com/dvdash/dashboard/internal/model"
	"github.com/dvdash/dashboard/internal/uptime"
	"github.com/dvdash/dashboard/internal/view"
)

// ListTables returns all six tables in page order.
func (a *API) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := a.tables.Tables(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": tables})
}

// GetTable returns one table by name.
func (a *API) GetTable(w http.ResponseWriter, r *http.Request, name model.TableName) {
	table, err := a.tables.Table(r.Context(), name)
	if err != nil {
		if errors.Is(err, view.ErrUnknownTable) {
			WriteError(w, http.StatusNotFound, "not_found", "Table not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Uptime returns the extrapolated feed uptime.
func (a *API) Uptime(w http.ResponseWriter, _ *http.Request) {
	v := a.uptime.Uptime()
	payload := map[string]any{
		"synced":  v.Synced,
		"seconds": v.Seconds,
		"display": uptime.Label(v.Seconds, v.Synced),
	}
	if v.Synced {
		payload["humanized"] = uptime.Humanize(v.Seconds)
	}
	writeJSON(w, http.StatusOK, payload)
}

// Reconnect asks the connection manager to connect now. It has no effect
// while a connection is live.
func (a *API) Reconnect(w http.ResponseWriter, _ *http.Request) {
	a.feed.Connect()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "connected": a.feed.Connected()})
}
