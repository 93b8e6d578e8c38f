// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marketmap/internal/config"
)

// NewRouter assembles the REST surface and the websocket bridge endpoint.
func NewRouter(cfg config.ServerConfig, handler *Handler, bridge *SurfaceBridge) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The websocket route skips the logger; its response writer must stay
	// hijackable for the upgrade.
	r.Get("/api/v1/ws", bridge.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequestLogger())
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))

		r.Put("/scope", handler.SetScope)
		r.Post("/layers", handler.IngestLayer)
		r.Post("/optimize", handler.Optimize)

		r.Get("/labels", handler.Labels)
		r.Get("/records", handler.Records)
		r.Post("/labels/save", handler.Save)
		r.Patch("/labels/{id}", handler.UpdateLabel)
		r.Delete("/labels/{id}", handler.ResetOne)
		r.Delete("/labels", handler.ResetAll)

		r.Post("/edit-mode", handler.EditMode)
		r.Post("/select", handler.Select)
	})

	return r
}
