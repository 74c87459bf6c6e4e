package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// FeedbackCmd returns the feedback command group
func FeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit and inspect summary feedback",
	}

	cmd.AddCommand(feedbackSubmitCmd())
	cmd.AddCommand(feedbackListCmd())
	cmd.AddCommand(feedbackStatsCmd())

	return cmd
}

func feedbackSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Rate a generated summary",
		RunE:  runFeedbackSubmit,
	}

	cmd.Flags().String("tos-file", "", "Path to the .txt file holding the rated ToS text (required)")
	cmd.Flags().String("summary-file", "", "Path to the file holding the generated summary (required)")
	cmd.Flags().IntP("rating", "r", 0, "Rating from 1 to 5 (required)")
	cmd.Flags().String("url", "", "URL the ToS was taken from")
	cmd.Flags().String("comment", "", "Free-form feedback on the summary")
	cmd.Flags().String("corrections", "", "Corrected summary text")
	cmd.Flags().StringP("model", "m", "", "Model that produced the summary")
	cmd.MarkFlagRequired("tos-file")
	cmd.MarkFlagRequired("summary-file")
	cmd.MarkFlagRequired("rating")

	return cmd
}

func runFeedbackSubmit(cmd *cobra.Command, args []string) error {
	tosFile, _ := cmd.Flags().GetString("tos-file")
	summaryFile, _ := cmd.Flags().GetString("summary-file")
	rating, _ := cmd.Flags().GetInt("rating")
	tosURL, _ := cmd.Flags().GetString("url")
	comment, _ := cmd.Flags().GetString("comment")
	corrections, _ := cmd.Flags().GetString("corrections")
	model, _ := cmd.Flags().GetString("model")

	tosText, err := readTextFile(tosFile)
	if err != nil {
		return err
	}
	summary, err := readTextFile(summaryFile)
	if err != nil {
		return err
	}

	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		Success    bool   `json:"success"`
		FeedbackID int64  `json:"feedbackId"`
		Message    string `json:"message"`
	}
	if err := c.Post("/api/analysis/feedback", map[string]interface{}{
		"tosUrl":      tosURL,
		"tosText":     tosText,
		"summary":     summary,
		"rating":      rating,
		"feedback":    comment,
		"corrections": corrections,
		"model":       model,
		"source":      "cli",
	}, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", resp.Message, resp.FeedbackID)
	return nil
}

func feedbackListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collected feedback",
		RunE:  runFeedbackList,
	}

	cmd.Flags().IntP("rating", "r", 0, "Only show feedback with this exact rating")
	cmd.Flags().IntP("limit", "l", 50, "Maximum rows to fetch")
	cmd.Flags().Int("offset", 0, "Rows to skip")

	return cmd
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	rating, _ := cmd.Flags().GetInt("rating")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path := "/api/analysis/feedback?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
	if rating > 0 {
		path += "&rating=" + strconv.Itoa(rating)
	}

	var resp struct {
		Feedback []struct {
			ID        int64  `json:"id"`
			Rating    int    `json:"rating"`
			ModelUsed string `json:"model_used"`
			Source    string `json:"source"`
			CreatedAt string `json:"created_at"`
			TosURL    string `json:"tos_url"`
		} `json:"feedback"`
		Total int64 `json:"total"`
	}
	if err := c.Get(path, &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range resp.Feedback {
		url := f.TosURL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(out, "%d\t%d/5\t%s\t%s\t%s\t%s\n", f.ID, f.Rating, f.ModelUsed, f.Source, f.CreatedAt, url)
	}
	fmt.Fprintf(out, "showing %d of %d\n", len(resp.Feedback), resp.Total)
	return nil
}

func feedbackStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate feedback statistics",
		RunE:  runFeedbackStats,
	}
}

func runFeedbackStats(cmd *cobra.Command, args []string) error {
	c, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp struct {
		RatingDistribution []struct {
			Rating     int     `json:"rating"`
			Count      int64   `json:"count"`
			Percentage float64 `json:"percentage"`
		} `json:"rating_distribution"`
		AverageRating float64 `json:"average_rating"`
		TotalFeedback int64   `json:"total_feedback"`
		BySource      []struct {
			Source string `json:"source"`
			Count  int64  `json:"count"`
		} `json:"by_source"`
	}
	if err := c.Get("/api/analysis/feedback/stats", &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total feedback: %d\n", resp.TotalFeedback)
	fmt.Fprintf(out, "Average rating: %.2f\n", resp.AverageRating)
	if len(resp.RatingDistribution) > 0 {
		fmt.Fprintln(out, "Ratings:")
		for _, bucket := range resp.RatingDistribution {
			fmt.Fprintf(out, "  %d stars: %d (%.2f%%)\n", bucket.Rating, bucket.Count, bucket.Percentage)
		}
	}
	if len(resp.BySource) > 0 {
		fmt.Fprintln(out, "Sources:")
		for _, src := range resp.BySource {
			fmt.Fprintf(out, "  %s: %d\n", src.Source, src.Count)
		}
	}
	return nil
}
