// Package server assembles the CMDB HTTP surface: health endpoints, the
// session-gated HTML UI, and the session-gated JSON API.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opsforge/cmdb/pkg/inventory"
	"github.com/opsforge/cmdb/pkg/session"
	"github.com/opsforge/cmdb/pkg/web"
)

// New builds the top-level router. Health and login routes are open;
// browsing routes redirect unauthenticated requests to /login; API routes
// answer 401 with a JSON body.
func New(store *inventory.Store, sessions session.Config, logger *slog.Logger) (chi.Router, error) {
	ui, err := web.NewUI(store, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("build ui: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthHandler)
	r.Get("/livez", healthHandler)

	r.Get("/login", ui.LoginForm)
	r.Post("/login", ui.Login)
	r.Post("/logout", ui.Logout)

	// Browsing surface: redirect to /login when unauthenticated.
	r.Group(func(r chi.Router) {
		r.Use(session.RequireRedirect(sessions))

		r.Get("/", ui.Index)
		r.Post("/assets", ui.CreateAsset)
		r.Post("/services", ui.CreateService)
		r.Post("/changes", ui.CreateChange)
		r.Post("/assets/{id}/delete", ui.DeleteAsset)
		r.Post("/services/{id}/delete", ui.DeleteService)
		r.Post("/changes/{id}/delete", ui.DeleteChange)
	})

	// JSON API: 401 when unauthenticated, no redirect.
	r.Route("/api", func(r chi.Router) {
		r.Use(session.Require(sessions))
		r.Mount("/", inventory.Router(store))
	})

	return r, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
