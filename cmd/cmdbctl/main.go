// Package main provides the cmdbctl CLI binary for managing CMDB records.
// It communicates with the cmdb-server JSON API using the shared-credential
// session login.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Global flags
	serverURL    string
	usernameFlag string
	passwordFlag string
	outputFlag   string
	globalClient *cmdbClient
)

// cmdbClient wraps an HTTP client with a cookie jar and the server base URL.
// The session cookie is obtained lazily on the first request.
type cmdbClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	loggedIn   bool
}

// newCmdbClient creates a new client targeting the given server URL.
func newCmdbClient(baseURL, username, password string) (*cmdbClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &cmdbClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// login posts the credential pair to /login and keeps the session cookie in
// the jar. The server answers a successful login with a 303 redirect.
func (c *cmdbClient) login() error {
	if c.loggedIn {
		return nil
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	resp, err := c.httpClient.PostForm(c.baseURL+"/login", form)
	if err != nil {
		return fmt.Errorf("connecting to cmdb server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusSeeOther {
		return fmt.Errorf("login failed (%d): check --username/--password", resp.StatusCode)
	}

	c.loggedIn = true
	return nil
}

// doRequest performs an authenticated HTTP request and returns the response
// body bytes. It returns an error if the status code indicates a failure.
func (c *cmdbClient) doRequest(method, path string, payload any) ([]byte, error) {
	if err := c.login(); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to cmdb server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// Try to extract error message from JSON response
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "cmdbctl",
		Short: "CLI for the CMDB server",
		Long: `cmdbctl is a command-line tool for managing CMDB records.

It provides commands for listing, creating, updating, and deleting
assets, services, and change records, plus an overview of record counts.

The CLI communicates with the cmdb-server JSON API.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCmdbClient(serverURL, usernameFlag, passwordFlag)
			if err != nil {
				return err
			}
			globalClient = client
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "CMDB server URL")
	rootCmd.PersistentFlags().StringVar(&usernameFlag, "username", "admin", "Login username")
	rootCmd.PersistentFlags().StringVar(&passwordFlag, "password", "admin", "Login password")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table, json, yaml")

	// Register subcommands
	rootCmd.AddCommand(newOverviewCmd())
	rootCmd.AddCommand(newAssetsCmd())
	rootCmd.AddCommand(newServicesCmd())
	rootCmd.AddCommand(newChangesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
