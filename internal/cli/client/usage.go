package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UsageCmd returns the usage command
func UsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show your API usage totals",
		Long:  "Show request and token totals recorded for your account's billed calls.",
		RunE:  runUsage,
	}
}

func runUsage(cmd *cobra.Command, args []string) error {
	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		TotalRequests int64 `json:"total_requests"`
		TotalTokens   int64 `json:"total_tokens"`
		Analyses      int64 `json:"analyses"`
		Questions     int64 `json:"questions"`
	}
	if err := c.Get("/api/analysis/usage", &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total requests: %d\n", resp.TotalRequests)
	fmt.Fprintf(out, "Total tokens:   %d\n", resp.TotalTokens)
	fmt.Fprintf(out, "Analyses:       %d\n", resp.Analyses)
	fmt.Fprintf(out, "Questions:      %d\n", resp.Questions)
	return nil
}
