package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles handler dependencies.
type RouterConfig struct {
	ClickHandler   *ClickHandler
	RankingHandler *RankingHandler
	AdminHandler   *AdminHandler
	CronHandler    *CronHandler
	HealthHandler  *HealthHandler

	APIBasePath string
	Middlewares []func(http.Handler) http.Handler
	// AdminAuth guards the admin subtree, CronAuth the cron subtree.
	// Nil leaves the subtree open (tests, local development).
	AdminAuth func(http.Handler) http.Handler
	CronAuth  func(http.Handler) http.Handler

	PrometheusHandler http.Handler
}

// NewRouter wires handlers and middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	for _, mw := range cfg.Middlewares {
		if mw == nil {
			continue
		}
		r.Use(mw)
	}

	apiBasePath := normalizeAPIBasePath(cfg.APIBasePath)
	if apiBasePath == "" {
		apiBasePath = "/"
	}
	r.Route(apiBasePath, func(api chi.Router) {
		if cfg.ClickHandler != nil {
			cfg.ClickHandler.RegisterRoutes(api)
		}
		if cfg.RankingHandler != nil {
			cfg.RankingHandler.RegisterRoutes(api)
		}
		if cfg.AdminHandler != nil {
			api.Group(func(admin chi.Router) {
				if cfg.AdminAuth != nil {
					admin.Use(cfg.AdminAuth)
				}
				cfg.AdminHandler.RegisterRoutes(admin)
			})
		}
		if cfg.CronHandler != nil {
			api.Group(func(cron chi.Router) {
				if cfg.CronAuth != nil {
					cron.Use(cfg.CronAuth)
				}
				cfg.CronHandler.RegisterRoutes(cron)
			})
		}
		if cfg.HealthHandler != nil {
			api.Get("/health", cfg.HealthHandler.ServeHTTP)
		}
	})

	if cfg.PrometheusHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.PrometheusHandler)
	}
	return r
}
