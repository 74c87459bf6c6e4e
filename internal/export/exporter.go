// Package export turns stored feedback rows into training-data files.
// It only reads; filtering, mapping, and serialization happen in one
// synchronous pass.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

// Format names accepted by the export command.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatPairs = "pairs"
)

const (
	DefaultMinRating = 1
	DefaultLimit     = 10000

	// pairsMinRating is the second threshold the pairs format applies on
	// top of the fetch filter when the caller leaves it at the default.
	pairsMinRating = 4
)

// FeedbackSource supplies the rows to export, newest-first.
type FeedbackSource interface {
	ListForExport(ctx context.Context, minRating, limit int) ([]*domain.Feedback, error)
}

// Options selects what to export and how to encode it.
type Options struct {
	Format    string
	MinRating int
	Limit     int
}

// Exporter encodes feedback selections. The clock is injectable so the
// same selection serializes byte-identically in tests.
type Exporter struct {
	source FeedbackSource
	now    func() time.Time
}

func NewExporter(source FeedbackSource) *Exporter {
	return &Exporter{source: source, now: time.Now}
}

// NewExporterWithClock creates an Exporter with a fixed clock.
func NewExporterWithClock(source FeedbackSource, now func() time.Time) *Exporter {
	return &Exporter{source: source, now: now}
}

// Export fetches rows matching opts and returns the encoded output.
func (e *Exporter) Export(ctx context.Context, opts Options) ([]byte, error) {
	minRating := opts.MinRating
	if minRating <= 0 {
		minRating = DefaultMinRating
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	items, err := e.source.ListForExport(ctx, minRating, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedback: %w", err)
	}
	switch opts.Format {
	case FormatJSON:
		return encodeJSON(items, e.now())
	case FormatJSONL:
		return encodeJSONL(items)
	case FormatCSV:
		return encodeCSV(items), nil
	case FormatPairs:
		pairsThreshold := minRating
		if opts.MinRating <= 0 {
			pairsThreshold = pairsMinRating
		}
		return encodePairs(items, pairsThreshold, e.now())
	default:
		return nil, fmt.Errorf("unknown format: %s", opts.Format)
	}
}
