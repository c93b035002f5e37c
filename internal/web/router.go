package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetvault/internal/session"
)

type RouterConfig struct {
	Handlers    *Handlers
	Sessions    *session.Store
	Verifier    *session.Verifier               // nil or empty secret runs as the local operator
	Log         *slog.Logger
	Secure      func(http.Handler) http.Handler // security headers
	RevealLimit func(http.Handler) http.Handler // per-session cap on reveal toggles
	Metrics     bool                            // expose /metrics

	MirrorTrigger http.HandlerFunc // POST /mirror; nil when no mirror is configured
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()
	r.Use(chimid.RealIP)
	r.Use(loggingMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(metricsMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware(cfg.Verifier))
		r.Use(h.sessionMiddleware(cfg.Sessions))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", h.dashboard)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Post("/", h.createClient)
			r.Get("/new", h.newClient)
			r.Get("/{id}", h.clientProfile)
			r.Post("/{id}/status", h.toggleClientStatus)
			r.Post("/{id}/delete", h.deleteClient)
			r.Get("/{id}/export.{format}", h.exportClient)
			r.Get("/{id}/payment-request", h.paymentRequest)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.listAssets)
			r.Post("/", h.saveAsset)
			r.Get("/new", h.newAsset)
			r.Get("/export.{format}", h.exportAssets)
			r.Post("/{id}", h.saveAsset)
			r.Get("/{id}/edit", h.editAsset)
			r.Get("/{id}/renew", h.confirmRenew)
			r.Post("/{id}/renew", h.renewAsset)
			r.Group(func(r chi.Router) {
				if cfg.RevealLimit != nil {
					r.Use(cfg.RevealLimit)
				}
				r.Post("/{id}/reveal", h.revealAsset)
			})
		})

		r.Get("/expiry", h.expiry)
		r.Get("/expiry/report.csv", h.expiryReport)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Post("/", h.saveProject)
			r.Get("/new", h.newProject)
			r.Get("/{id}", h.projectDetail)
			r.Post("/{id}", h.saveProject)
			r.Get("/{id}/edit", h.editProject)
			r.Post("/{id}/delete", h.deleteProject)
		})

		r.Get("/reports", h.reports)
		r.Get("/reports/{kind}.{format}", h.downloadReport)
		r.Get("/reports/{kind}/print", h.printReport)

		if cfg.MirrorTrigger != nil {
			r.Post("/mirror", cfg.MirrorTrigger)
		}
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
