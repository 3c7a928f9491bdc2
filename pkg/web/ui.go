// Package web serves the HTML browsing surface: the listing page, the login
// form, and the form-encoded create/delete endpoints.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/opsforge/cmdb/pkg/inventory"
	"github.com/opsforge/cmdb/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// UI holds the parsed templates and the dependencies of the browsing
// surface.
type UI struct {
	store    *inventory.Store
	sessions session.Config
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewUI parses the embedded templates and returns the browsing surface.
func NewUI(store *inventory.Store, sessions session.Config, logger *slog.Logger) (*UI, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &UI{
		store:    store,
		sessions: sessions,
		tmpl:     tmpl,
		logger:   logger,
	}, nil
}

type indexData struct {
	Assets   []inventory.Asset
	Services []inventory.Service
	Changes  []inventory.ChangeRecord
	Q        string
	Status   string
}

type loginData struct {
	Error string
}

// Index handles GET /. Query params q and status filter the asset table.
func (ui *UI) Index(w http.ResponseWriter, r *http.Request) {
	filter := inventory.AssetFilter{
		Q:      r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}

	assets, err := ui.store.ListAssets(filter)
	if err != nil {
		ui.serverError(w, "list assets", err)
		return
	}
	services, err := ui.store.ListServices()
	if err != nil {
		ui.serverError(w, "list services", err)
		return
	}
	changes, err := ui.store.ListChanges()
	if err != nil {
		ui.serverError(w, "list changes", err)
		return
	}

	ui.render(w, http.StatusOK, "index.html", indexData{
		Assets:   assets,
		Services: services,
		Changes:  changes,
		Q:        filter.Q,
		Status:   filter.Status,
	})
}

// LoginForm handles GET /login.
func (ui *UI) LoginForm(w http.ResponseWriter, r *http.Request) {
	ui.render(w, http.StatusOK, "login.html", loginData{})
}

// Login handles POST /login. Credentials must exactly match the configured
// pair; on success the sentinel cookie is set and the client is redirected
// to the listing page.
func (ui *UI) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if username != ui.sessions.Username || password != ui.sessions.Password {
		ui.logger.Info("login rejected", "username", username)
		ui.render(w, http.StatusBadRequest, "login.html", loginData{Error: "invalid username or password"})
		return
	}

	session.Set(ui.sessions, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout: clears the cookie and redirects to the login
// page.
func (ui *UI) Logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(ui.sessions, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// render executes a template into a buffer first so a template failure can
// still produce a clean 500 instead of a half-written page.
func (ui *UI) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := ui.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		ui.serverError(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (ui *UI) serverError(w http.ResponseWriter, what string, err error) {
	ui.logger.Error("request failed", "op", what, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
