package server

import (
	"net/http"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func NewRouter(tierServer *TierServer, cfg *config.Config, reg *prometheus.Registry, logger zerolog.Logger) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(logger))
	r.Use(c.Handler)

	r.Get("/tiers", tierServer.GetTiers)
	r.Post("/setTier", tierServer.SetTier)
	r.Post("/removeTier", tierServer.RemoveTier)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
