package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// serviceRecord mirrors the JSON structure of the server's Service type.
type serviceRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	AssetID      int64     `json:"asset_id"`
	RepoURL      string    `json:"repo_url"`
	DeployMethod string    `json:"deploy_method"`
	Owner        string    `json:"owner"`
	Status       string    `json:"status"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

func serviceHeaders() []string {
	return []string{"id", "name", "asset_id", "deploy_method", "owner", "status"}
}

func serviceRow(s serviceRecord) []string {
	return []string{
		fmt.Sprintf("%d", s.ID), s.Name, fmt.Sprintf("%d", s.AssetID), s.DeployMethod, s.Owner, s.Status,
	}
}

func newServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage services (deployable units bound to assets)",
	}

	cmd.AddCommand(newServicesListCmd())
	cmd.AddCommand(newServicesGetCmd())
	cmd.AddCommand(newServicesCreateCmd())
	cmd.AddCommand(newServicesUpdateCmd())
	cmd.AddCommand(newServicesDeleteCmd())

	return cmd
}

func newServicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/services", nil)
			if err != nil {
				return err
			}

			var services []serviceRecord
			if err := json.Unmarshal(body, &services); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}

			rows := make([][]string, len(services))
			for i, s := range services {
				rows[i] = serviceRow(s)
			}
			return printOutput(os.Stdout, format, services, serviceHeaders(), rows)
		},
	}
}

func newServicesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get one service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/services/"+args[0], nil)
			if err != nil {
				return err
			}

			var service serviceRecord
			if err := json.Unmarshal(body, &service); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, service, serviceHeaders(), [][]string{serviceRow(service)})
		},
	}
}

func newServicesCreateCmd() *cobra.Command {
	var name, repoURL, deployMethod, owner, status, note string
	var assetID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service on an existing asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"name":          name,
				"asset_id":      assetID,
				"repo_url":      repoURL,
				"deploy_method": deployMethod,
				"owner":         owner,
				"status":        status,
				"note":          note,
			}

			body, err := globalClient.doRequest(http.MethodPost, "/api/services", payload)
			if err != nil {
				return err
			}

			var service serviceRecord
			if err := json.Unmarshal(body, &service); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, service, serviceHeaders(), [][]string{serviceRow(service)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Service name (required, unique)")
	cmd.Flags().Int64Var(&assetID, "asset-id", 0, "Owning asset ID (required)")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "Repository URL")
	cmd.Flags().StringVar(&deployMethod, "deploy-method", "", "Deploy method (default ansible)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner")
	cmd.Flags().StringVar(&status, "status", "", "Status (default running)")
	cmd.Flags().StringVar(&note, "note", "", "Free-text note")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("asset-id")

	return cmd
}

func newServicesUpdateCmd() *cobra.Command {
	var name, repoURL, deployMethod, owner, status, note string
	var assetID int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a service (only supplied flags are applied)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			patch := map[string]any{}
			if cmd.Flags().Changed("name") {
				patch["name"] = name
			}
			if cmd.Flags().Changed("asset-id") {
				patch["asset_id"] = assetID
			}
			if cmd.Flags().Changed("repo-url") {
				patch["repo_url"] = repoURL
			}
			if cmd.Flags().Changed("deploy-method") {
				patch["deploy_method"] = deployMethod
			}
			if cmd.Flags().Changed("owner") {
				patch["owner"] = owner
			}
			if cmd.Flags().Changed("status") {
				patch["status"] = status
			}
			if cmd.Flags().Changed("note") {
				patch["note"] = note
			}

			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: supply at least one field flag")
			}

			body, err := globalClient.doRequest(http.MethodPut, "/api/services/"+args[0], patch)
			if err != nil {
				return err
			}

			var service serviceRecord
			if err := json.Unmarshal(body, &service); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, service, serviceHeaders(), [][]string{serviceRow(service)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().Int64Var(&assetID, "asset-id", 0, "New owning asset ID")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "New repository URL")
	cmd.Flags().StringVar(&deployMethod, "deploy-method", "", "New deploy method")
	cmd.Flags().StringVar(&owner, "owner", "", "New owner")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&note, "note", "", "New note")

	return cmd
}

func newServicesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a service (cascades to its change records)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := globalClient.doRequest(http.MethodDelete, "/api/services/"+args[0], nil); err != nil {
				return err
			}
			fmt.Printf("service %s deleted\n", args[0])
			return nil
		},
	}
}
