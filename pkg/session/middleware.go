package session

import (
	"encoding/json"
	"net/http"
)

// Authenticated reports whether the request carries the session cookie with
// the sentinel value.
func Authenticated(cfg Config, r *http.Request) bool {
	cookie, err := r.Cookie(cfg.CookieName)
	return err == nil && cookie.Value == cookieValue
}

// Set writes the session cookie on a successful login.
func Set(cfg Config, w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
	})
}

// Clear expires the session cookie on logout.
func Clear(cfg Config, w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Require returns middleware for JSON API routes: unauthenticated requests
// get a 401 response with a JSON body, never a redirect.
func Require(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authenticated(cfg, r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "unauthenticated",
					"message": "login required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRedirect returns middleware for browsing routes: unauthenticated
// requests are redirected (303) to the login page.
func RequireRedirect(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authenticated(cfg, r) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
