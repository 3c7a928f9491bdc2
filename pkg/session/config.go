// Package session implements the shared-credential session gate. One fixed
// username/password pair and one sentinel cookie: this is a placeholder, not
// a security boundary.
package session

import "os"

// cookieValue is the sentinel stored in the session cookie. Presence of the
// cookie with exactly this value is the whole authentication state.
const cookieValue = "authenticated"

// Config holds the credential pair and cookie name. It is injected into
// handlers and middleware; there is no package-level state.
type Config struct {
	Username   string
	Password   string
	CookieName string
}

// DefaultConfig returns the default session configuration. The admin/admin
// pair matches the development default and must be overridden via the
// environment for anything beyond local use.
func DefaultConfig() Config {
	return Config{
		Username:   "admin",
		Password:   "admin",
		CookieName: "cmdb_session",
	}
}

// ConfigFromEnv loads config from environment variables.
// CMDB_AUTH_USERNAME, CMDB_AUTH_PASSWORD, CMDB_SESSION_COOKIE
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CMDB_AUTH_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("CMDB_AUTH_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("CMDB_SESSION_COOKIE"); v != "" {
		cfg.CookieName = v
	}

	return cfg
}
