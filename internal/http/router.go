package httpapi

import (
	"net/http"
	"time"

	"github.com/dvdash/dashboard/internal/http/handlers"
	"github.com/dvdash/dashboard/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the routing tree for the display page, JSON API and metrics.
func NewRouter(api *handlers.API, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON(api))
	r.Use(middleware.Timeout(20 * time.Second))
	r.Use(StripForwardedPrefix)
	r.Use(RequestLogger(api))

	r.Get("/healthz", api.Health)
	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Get("/tables", api.ListTables)
		apiRouter.Get("/tables/{name}", func(w http.ResponseWriter, r *http.Request) {
			api.GetTable(w, r, model.TableName(chi.URLParam(r, "name")))
		})
		apiRouter.Get("/uptime", api.Uptime)
		apiRouter.Post("/reconnect", api.Reconnect)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Get("/", api.Page)
	return r
}
