package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about a Terms of Service document",
		Long:  "Ask a question answered strictly from the supplied ToS document.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().StringP("url", "u", "", "URL of the ToS page to use as context")
	cmd.Flags().StringP("file", "F", "", "Path to a .txt file to use as context")
	cmd.Flags().StringP("model", "m", "", "Generation model to use (defaults to the server baseline)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	pageURL, _ := cmd.Flags().GetString("url")
	filePath, _ := cmd.Flags().GetString("file")
	model, _ := cmd.Flags().GetString("model")

	if (pageURL == "") == (filePath == "") {
		return fmt.Errorf("exactly one of --url or --file is required")
	}

	var docContext string
	var err error
	if pageURL != "" {
		docContext, err = fetchAndExtract(pageURL)
	} else {
		docContext, err = readTextFile(filePath)
	}
	if err != nil {
		return err
	}

	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := postWithFallback(cmd, c, "/api/analysis/ask", map[string]string{
		"question": question,
		"context":  docContext,
		"model":    model,
	}, &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
	return nil
}
