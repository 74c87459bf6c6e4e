package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talk-to-your-terms/tosapi/internal/cli"
	"github.com/talk-to-your-terms/tosapi/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tos",
		Short: "ToS CLI - Summarize terms of service with an LLM",
		Long: `ToS CLI analyzes terms of service documents through the analysis API.

Environment variables:
  TOS_TOKEN     Session token for authenticated usage (optional)
  TOS_API_URL   API base URL (default: http://localhost:3000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("token", "", "Session token (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AnalyzeCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.UsageCmd())
	rootCmd.AddCommand(client.FeedbackCmd())
	rootCmd.AddCommand(client.RegisterCmd())
	rootCmd.AddCommand(client.LoginCmd())
	rootCmd.AddCommand(client.LogoutCmd())
	rootCmd.AddCommand(client.WhoamiCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
