package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// changeRecordJSON mirrors the JSON structure of the server's ChangeRecord
// type.
type changeRecordJSON struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	ServiceID    int64     `json:"service_id"`
	RiskLevel    string    `json:"risk_level"`
	ChangeWindow string    `json:"change_window"`
	Executor     string    `json:"executor"`
	Approver     string    `json:"approver"`
	Status       string    `json:"status"`
	RollbackPlan string    `json:"rollback_plan"`
	CreatedAt    time.Time `json:"created_at"`
}

func changeHeaders() []string {
	return []string{"id", "title", "service_id", "risk_level", "executor", "status"}
}

func changeRow(c changeRecordJSON) []string {
	return []string{
		fmt.Sprintf("%d", c.ID), c.Title, fmt.Sprintf("%d", c.ServiceID), c.RiskLevel, c.Executor, c.Status,
	}
}

func newChangesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Manage change records",
	}

	cmd.AddCommand(newChangesListCmd())
	cmd.AddCommand(newChangesGetCmd())
	cmd.AddCommand(newChangesCreateCmd())
	cmd.AddCommand(newChangesUpdateCmd())
	cmd.AddCommand(newChangesDeleteCmd())

	return cmd
}

func newChangesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List change records",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/changes", nil)
			if err != nil {
				return err
			}

			var changes []changeRecordJSON
			if err := json.Unmarshal(body, &changes); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}

			rows := make([][]string, len(changes))
			for i, c := range changes {
				rows[i] = changeRow(c)
			}
			return printOutput(os.Stdout, format, changes, changeHeaders(), rows)
		},
	}
}

func newChangesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get one change record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/changes/"+args[0], nil)
			if err != nil {
				return err
			}

			var change changeRecordJSON
			if err := json.Unmarshal(body, &change); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, change, changeHeaders(), [][]string{changeRow(change)})
		},
	}
}

func newChangesCreateCmd() *cobra.Command {
	var title, riskLevel, changeWindow, executor, approver, status, rollbackPlan string
	var serviceID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a change record against an existing service",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"title":         title,
				"service_id":    serviceID,
				"risk_level":    riskLevel,
				"change_window": changeWindow,
				"executor":      executor,
				"approver":      approver,
				"status":        status,
				"rollback_plan": rollbackPlan,
			}

			body, err := globalClient.doRequest(http.MethodPost, "/api/changes", payload)
			if err != nil {
				return err
			}

			var change changeRecordJSON
			if err := json.Unmarshal(body, &change); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, change, changeHeaders(), [][]string{changeRow(change)})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Change title (required)")
	cmd.Flags().Int64Var(&serviceID, "service-id", 0, "Owning service ID (required)")
	cmd.Flags().StringVar(&riskLevel, "risk-level", "", "Risk level (default medium)")
	cmd.Flags().StringVar(&changeWindow, "change-window", "", "Change window")
	cmd.Flags().StringVar(&executor, "executor", "", "Executor")
	cmd.Flags().StringVar(&approver, "approver", "", "Approver")
	cmd.Flags().StringVar(&status, "status", "", "Status (default pending)")
	cmd.Flags().StringVar(&rollbackPlan, "rollback-plan", "", "Rollback plan")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("service-id")

	return cmd
}

func newChangesUpdateCmd() *cobra.Command {
	var title, riskLevel, changeWindow, executor, approver, status, rollbackPlan string
	var serviceID int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a change record (only supplied flags are applied)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			patch := map[string]any{}
			if cmd.Flags().Changed("title") {
				patch["title"] = title
			}
			if cmd.Flags().Changed("service-id") {
				patch["service_id"] = serviceID
			}
			if cmd.Flags().Changed("risk-level") {
				patch["risk_level"] = riskLevel
			}
			if cmd.Flags().Changed("change-window") {
				patch["change_window"] = changeWindow
			}
			if cmd.Flags().Changed("executor") {
				patch["executor"] = executor
			}
			if cmd.Flags().Changed("approver") {
				patch["approver"] = approver
			}
			if cmd.Flags().Changed("status") {
				patch["status"] = status
			}
			if cmd.Flags().Changed("rollback-plan") {
				patch["rollback_plan"] = rollbackPlan
			}

			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: supply at least one field flag")
			}

			body, err := globalClient.doRequest(http.MethodPut, "/api/changes/"+args[0], patch)
			if err != nil {
				return err
			}

			var change changeRecordJSON
			if err := json.Unmarshal(body, &change); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			return printOutput(os.Stdout, format, change, changeHeaders(), [][]string{changeRow(change)})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().Int64Var(&serviceID, "service-id", 0, "New owning service ID")
	cmd.Flags().StringVar(&riskLevel, "risk-level", "", "New risk level")
	cmd.Flags().StringVar(&changeWindow, "change-window", "", "New change window")
	cmd.Flags().StringVar(&executor, "executor", "", "New executor")
	cmd.Flags().StringVar(&approver, "approver", "", "New approver")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&rollbackPlan, "rollback-plan", "", "New rollback plan")

	return cmd
}

func newChangesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a change record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := globalClient.doRequest(http.MethodDelete, "/api/changes/"+args[0], nil); err != nil {
				return err
			}
			fmt.Printf("change %s deleted\n", args[0])
			return nil
		},
	}
}
