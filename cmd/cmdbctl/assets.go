package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// assetRecord mirrors the JSON structure of the server's Asset type.
type assetRecord struct {
	ID          int64     `json:"id"`
	Hostname    string    `json:"hostname"`
	IP          string    `json:"ip"`
	Environment string    `json:"environment"`
	OS          string    `json:"os"`
	Owner       string    `json:"owner"`
	Status      string    `json:"status"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

func assetHeaders() []string {
	return []string{"id", "hostname", "ip", "environment", "os", "owner", "status"}
}

func assetRow(a assetRecord) []string {
	return []string{
		fmt.Sprintf("%d", a.ID), a.Hostname, a.IP, a.Environment, a.OS, a.Owner, a.Status,
	}
}

func newAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage assets (tracked hosts)",
	}

	cmd.AddCommand(newAssetsListCmd())
	cmd.AddCommand(newAssetsGetCmd())
	cmd.AddCommand(newAssetsCreateCmd())
	cmd.AddCommand(newAssetsUpdateCmd())
	cmd.AddCommand(newAssetsDeleteCmd())

	return cmd
}

func newAssetsListCmd() *cobra.Command {
	var qFlag, statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			query := url.Values{}
			if qFlag != "" {
				query.Set("q", qFlag)
			}
			if statusFlag != "" {
				query.Set("status", statusFlag)
			}
			path := "/api/assets"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			body, err := globalClient.doRequest(http.MethodGet, path, nil)
			if err != nil {
				return err
			}

			var assets []assetRecord
			if err := json.Unmarshal(body, &assets); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}

			rows := make([][]string, len(assets))
			for i, a := range assets {
				rows[i] = assetRow(a)
			}
			return printOutput(os.Stdout, format, assets, assetHeaders(), rows)
		},
	}

	cmd.Flags().StringVar(&qFlag, "q", "", "Substring filter over hostname/ip/owner")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Exact status filter")

	return cmd
}

func newAssetsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/assets/"+args[0], nil)
			if err != nil {
				return err
			}

			var asset assetRecord
			if err := json.Unmarshal(body, &asset); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, asset, assetHeaders(), [][]string{assetRow(asset)})
		},
	}
}

func newAssetsCreateCmd() *cobra.Command {
	var hostname, ip, environment, osName, owner, status, note string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"hostname":    hostname,
				"ip":          ip,
				"environment": environment,
				"os":          osName,
				"owner":       owner,
				"status":      status,
				"note":        note,
			}

			body, err := globalClient.doRequest(http.MethodPost, "/api/assets", payload)
			if err != nil {
				return err
			}

			var asset assetRecord
			if err := json.Unmarshal(body, &asset); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, asset, assetHeaders(), [][]string{assetRow(asset)})
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "Hostname (required, unique)")
	cmd.Flags().StringVar(&ip, "ip", "", "IP address (required, unique)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment (default prod)")
	cmd.Flags().StringVar(&osName, "os", "", "Operating system (default linux)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner")
	cmd.Flags().StringVar(&status, "status", "", "Status (default active)")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	_ = cmd.MarkFlagRequired("hostname")
	_ = cmd.MarkFlagRequired("ip")

	return cmd
}

func newAssetsUpdateCmd() *cobra.Command {
	var hostname, ip, environment, osName, owner, status, note string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an asset (only supplied flags are applied)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			// Send only flags the caller explicitly set; the server applies
			// partial-update semantics.
			patch := map[string]any{}
			setIfChanged := func(flag, key, value string) {
				if cmd.Flags().Changed(flag) {
					patch[key] = value
				}
			}
			setIfChanged("hostname", "hostname", hostname)
			setIfChanged("ip", "ip", ip)
			setIfChanged("environment", "environment", environment)
			setIfChanged("os", "os", osName)
			setIfChanged("owner", "owner", owner)
			setIfChanged("status", "status", status)
			setIfChanged("note", "note", note)

			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: supply at least one field flag")
			}

			body, err := globalClient.doRequest(http.MethodPut, "/api/assets/"+args[0], patch)
			if err != nil {
				return err
			}

			var asset assetRecord
			if err := json.Unmarshal(body, &asset); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, asset, assetHeaders(), [][]string{assetRow(asset)})
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "New hostname")
	cmd.Flags().StringVar(&ip, "ip", "", "New IP address")
	cmd.Flags().StringVar(&environment, "environment", "", "New environment")
	cmd.Flags().StringVar(&osName, "os", "", "New operating system")
	cmd.Flags().StringVar(&owner, "owner", "", "New owner")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&note, "note", "", "New note")

	return cmd
}

func newAssetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset (cascades to its services and their changes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := globalClient.doRequest(http.MethodDelete, "/api/assets/"+args[0], nil); err != nil {
				return err
			}
			fmt.Printf("asset %s deleted\n", args[0])
			return nil
		},
	}
}
