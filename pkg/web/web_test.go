package web

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opsforge/cmdb/pkg/inventory"
	"github.com/opsforge/cmdb/pkg/session"
)

func setupWebTest(t *testing.T) (chi.Router, *inventory.Store, session.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	store := inventory.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	sessions := session.DefaultConfig()
	ui, err := NewUI(store, sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/login", ui.LoginForm)
	r.Post("/login", ui.Login)
	r.Post("/logout", ui.Logout)
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
	return r, store, sessions
}

// loginCookie logs in with the configured credentials and returns the session
// cookie for subsequent requests.
func loginCookie(t *testing.T, router chi.Router, cfg session.Config) *http.Cookie {
	t.Helper()
	rec := postForm(t, router, "/login", url.Values{
		"username": {cfg.Username},
		"password": {cfg.Password},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == cfg.CookieName {
			return cookie
		}
	}
	t.Fatal("login response carried no session cookie")
	return nil
}

func postForm(t *testing.T, router chi.Router, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, router chi.Router, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginForm(t *testing.T) {
	router, _, _ := setupWebTest(t)

	rec := get(t, router, "/login", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="username"`)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestLogin(t *testing.T) {
	router, _, cfg := setupWebTest(t)

	cookie := loginCookie(t, router, cfg)
	assert.NotEmpty(t, cookie.Value)

	// The cookie unlocks the listing page.
	rec := get(t, router, "/", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_WrongCredentials(t *testing.T) {
	router, _, cfg := setupWebTest(t)

	rec := postForm(t, router, "/login", url.Values{
		"username": {cfg.Username},
		"password": {"wrong"},
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")

	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, cfg.CookieName, cookie.Name)
	}
}

func TestLogout(t *testing.T) {
	router, _, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	rec := postForm(t, router, "/logout", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestIndex_RedirectsWhenUnauthenticated(t *testing.T) {
	router, _, _ := setupWebTest(t)

	rec := get(t, router, "/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestIndex_RendersRecords(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	asset, err := store.CreateAsset(inventory.AssetCreate{Hostname: "node-01", IP: "10.0.0.11"})
	require.NoError(t, err)
	service, err := store.CreateService(inventory.ServiceCreate{Name: "billing-api", AssetID: asset.ID})
	require.NoError(t, err)
	_, err = store.CreateChange(inventory.ChangeCreate{Title: "deploy billing v1.0.1", ServiceID: service.ID})
	require.NoError(t, err)

	rec := get(t, router, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "node-01")
	assert.Contains(t, body, "billing-api")
	assert.Contains(t, body, "deploy billing v1.0.1")
}

func TestIndex_FiltersAssets(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	_, err := store.CreateAsset(inventory.AssetCreate{Hostname: "web-01", IP: "10.0.0.1"})
	require.NoError(t, err)
	_, err = store.CreateAsset(inventory.AssetCreate{Hostname: "db-01", IP: "10.0.1.1"})
	require.NoError(t, err)

	rec := get(t, router, "/?q=web", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "web-01")
	assert.NotContains(t, body, "db-01")
}

func TestCreateAssetForm(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	rec := postForm(t, router, "/assets", url.Values{
		"hostname": {"node-01"},
		"ip":       {"10.0.0.11"},
		"owner":    {"ops"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	assets, err := store.ListAssets(inventory.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "prod", assets[0].Environment)

	// Duplicate hostname.
	rec = postForm(t, router, "/assets", url.Values{
		"hostname": {"node-01"},
		"ip":       {"10.0.0.12"},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateServiceForm(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	asset, err := store.CreateAsset(inventory.AssetCreate{Hostname: "node-01", IP: "10.0.0.11"})
	require.NoError(t, err)

	rec := postForm(t, router, "/services", url.Values{
		"name":     {"billing-api"},
		"asset_id": {fmt.Sprint(asset.ID)},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = postForm(t, router, "/services", url.Values{
		"name":     {"orphan-api"},
		"asset_id": {"999"},
	}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postForm(t, router, "/services", url.Values{
		"name":     {"broken-api"},
		"asset_id": {"abc"},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateChangeForm(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	asset, err := store.CreateAsset(inventory.AssetCreate{Hostname: "node-01", IP: "10.0.0.11"})
	require.NoError(t, err)
	service, err := store.CreateService(inventory.ServiceCreate{Name: "billing-api", AssetID: asset.ID})
	require.NoError(t, err)

	rec := postForm(t, router, "/changes", url.Values{
		"title":      {"deploy billing v1.0.1"},
		"service_id": {fmt.Sprint(service.ID)},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	changes, err := store.ListChanges()
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "pending", changes[0].Status)
}

func TestDeleteForms_Cascade(t *testing.T) {
	router, store, cfg := setupWebTest(t)
	cookie := loginCookie(t, router, cfg)

	asset, err := store.CreateAsset(inventory.AssetCreate{Hostname: "node-01", IP: "10.0.0.11"})
	require.NoError(t, err)
	service, err := store.CreateService(inventory.ServiceCreate{Name: "billing-api", AssetID: asset.ID})
	require.NoError(t, err)
	_, err = store.CreateChange(inventory.ChangeCreate{Title: "deploy", ServiceID: service.ID})
	require.NoError(t, err)

	rec := postForm(t, router, fmt.Sprintf("/assets/%d/delete", asset.ID), nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	overview, err := store.Counts()
	require.NoError(t, err)
	assert.Zero(t, overview.AssetCount)
	assert.Zero(t, overview.ServiceCount)
	assert.Zero(t, overview.ChangeCount)

	// Deleting an already-deleted record is a 404.
	rec = postForm(t, router, fmt.Sprintf("/assets/%d/delete", asset.ID), nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
