package admin

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talk-to-your-terms/tosapi/internal/config"
	"github.com/talk-to-your-terms/tosapi/internal/database"
	"github.com/talk-to-your-terms/tosapi/internal/export"
	"github.com/talk-to-your-terms/tosapi/internal/repository"
	"github.com/talk-to-your-terms/tosapi/internal/storage"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export feedback as training data",
		Long: `Export collected feedback from the database as training data.

Formats:
  json   full training records with metadata
  jsonl  prompt/completion lines for fine-tuning
  csv    spreadsheet-friendly overview
  pairs  high-quality input/output pairs with quality scores

The output flag accepts a file path, "-" for stdout, or an
s3://bucket/key URL.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("format", "f", export.FormatJSON, "Export format: json, jsonl, csv, or pairs")
	cmd.Flags().IntP("rating", "r", 0, "Only include feedback with at least this rating")
	cmd.Flags().IntP("limit", "l", export.DefaultLimit, "Maximum number of rows to export")
	cmd.Flags().StringP("output", "o", "-", "Output destination: path, - for stdout, or s3://bucket/key")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	rating, _ := cmd.Flags().GetInt("rating")
	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exporter := export.NewExporter(repository.NewFeedbackRepository(pool))

	data, err := exporter.Export(ctx, export.Options{
		Format:    format,
		MinRating: rating,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	switch {
	case output == "" || output == "-":
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	case strings.HasPrefix(output, "s3://"):
		if err := uploadToS3(ctx, cfg, output, format, data); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	}

	fmt.Fprintf(os.Stderr, "exported %d bytes (%s) to %s\n", len(data), format, describeOutput(output))
	return nil
}

func uploadToS3(ctx context.Context, cfg *config.Config, rawURL, format string, data []byte) error {
	bucket, key, err := storage.ParseS3URL(rawURL)
	if err != nil {
		return err
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		UsePathStyle:    cfg.S3Endpoint != "",
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	return client.PutObject(ctx, bucket, key, contentTypeForFormat(format), data)
}

func contentTypeForFormat(format string) string {
	switch format {
	case export.FormatCSV:
		return "text/csv"
	case export.FormatJSONL:
		return "application/x-ndjson"
	default:
		return "application/json"
	}
}

func describeOutput(output string) string {
	if output == "" || output == "-" {
		return "stdout"
	}
	return output
}
