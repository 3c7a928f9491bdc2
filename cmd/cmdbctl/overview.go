package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// overviewResponse mirrors the JSON structure of GET /api/overview.
type overviewResponse struct {
	AssetCount   int64 `json:"asset_count"`
	ServiceCount int64 `json:"service_count"`
	ChangeCount  int64 `json:"change_count"`
}

func newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show record counts across assets, services, and changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}

			body, err := globalClient.doRequest(http.MethodGet, "/api/overview", nil)
			if err != nil {
				return err
			}

			var overview overviewResponse
			if err := json.Unmarshal(body, &overview); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}

			headers := []string{"assets", "services", "changes"}
			rows := [][]string{{
				fmt.Sprintf("%d", overview.AssetCount),
				fmt.Sprintf("%d", overview.ServiceCount),
				fmt.Sprintf("%d", overview.ChangeCount),
			}}
			return printOutput(os.Stdout, format, overview, headers, rows)
		},
	}
}
