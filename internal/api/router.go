// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/keyscope/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	admin         *AdminAuth
}

// NewRouter creates a router. admin may be nil, which leaves admin routes open.
func NewRouter(handler *Handler, mw *ChiMiddleware, admin *AdminAuth) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		admin:         admin,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(chiMiddleware(middleware.AccessLog))
	if router.handler.perf != nil {
		r.Use(router.handler.perf.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil, nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	// Upstream-backed endpoints spend quota and get the strict limit.
	r.Route("/api/v1/youtube", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitUpstream())
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.MaxBodySize())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/search", router.handler.YouTubeSearch)
	})

	r.Route("/api/v1/keywords", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.MaxBodySize())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/analyze", router.handler.AnalyzeKeywords)
		r.Post("/classify", router.handler.ClassifyText)
		r.Post("/trending", router.handler.TrendingKeywords)
	})

	r.Route("/api/v1/content", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitUpstream())
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.MaxBodySize())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/topics", router.handler.GenerateTopics)
	})

	r.Route("/api/v1/keys", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.MaxBodySize())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.With(router.chiMiddleware.RateLimit()).Get("/status", router.handler.KeyStatus)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAdmin())
			r.Use(chiMiddleware(router.admin.RequireAdmin))
			r.Post("/", router.handler.AddKey)
			r.Post("/reset", router.handler.ResetKeys)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
