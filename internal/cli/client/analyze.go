package client

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talk-to-your-terms/tosapi/internal/extract"
)

// AnalyzeCmd returns the analyze command
func AnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a Terms of Service document",
		Long: `Fetch a ToS page or read a local text file, extract the terms text,
and ask the API for a summary.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("url", "u", "", "URL of the ToS page to analyze")
	cmd.Flags().StringP("file", "F", "", "Path to a .txt file containing the ToS text")
	cmd.Flags().StringP("model", "m", "", "Generation model to use (defaults to the server baseline)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pageURL, _ := cmd.Flags().GetString("url")
	filePath, _ := cmd.Flags().GetString("file")
	model, _ := cmd.Flags().GetString("model")

	if (pageURL == "") == (filePath == "") {
		return fmt.Errorf("exactly one of --url or --file is required")
	}

	var text string
	var err error
	if pageURL != "" {
		text, err = fetchAndExtract(pageURL)
	} else {
		text, err = readTextFile(filePath)
	}
	if err != nil {
		return err
	}

	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := postWithFallback(cmd, c, "/api/analysis/analyze", map[string]string{
		"text":  text,
		"model": model,
	}, &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
	return nil
}

// postWithFallback posts the payload and, when the server rejects the
// requested model but offers a baseline, retries once with the
// suggestion. The payload map must carry the model under "model".
func postWithFallback(cmd *cobra.Command, c *APIClient, path string, payload map[string]string, out interface{}) error {
	err := c.Post(path, payload, out)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.FallbackAvailable || apiErr.Suggestion == "" {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "model unavailable, retrying with %s\n", apiErr.Suggestion)
	payload["model"] = apiErr.Suggestion
	return c.Post(path, payload, out)
}

func fetchAndExtract(pageURL string) (string, error) {
	resp, err := http.Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	text, err := extract.FromHTML(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", pageURL, err)
	}
	if text == "" {
		return "", fmt.Errorf("no terms of service text found at %s", pageURL)
	}
	return text, nil
}

func readTextFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("PDF files are not supported here; use the browser extension or convert to .txt")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
