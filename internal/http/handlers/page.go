package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dvdash/dashboard/internal/uptime"
	"github.com/dvdash/dashboard/internal/view"
)

// PageRefreshSeconds is the auto-refresh period of the display page.
const PageRefreshSeconds = 5

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

type pageData struct {
	Branding       Branding
	Tables         []view.Table
	UptimeLabel    string
	Connected      bool
	RefreshSeconds int
}

// Page renders the six tables as a self-refreshing HTML page.
func (a *API) Page(w http.ResponseWriter, r *http.Request) {
	tables, err := a.tables.Tables(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	up := a.uptime.Uptime()
	data := pageData{
		Branding:       a.branding,
		Tables:         tables,
		UptimeLabel:    uptime.Label(up.Seconds, up.Synced),
		Connected:      a.feed.Connected(),
		RefreshSeconds: PageRefreshSeconds,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		a.logger.Error("page render failed", "err", err)
		WriteError(w, http.StatusInternalServerError, "render_failed", "Page render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
