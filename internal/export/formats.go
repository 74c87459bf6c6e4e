package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

// ErrNoFeedback is returned for formats whose summary statistics are
// undefined over an empty selection.
var ErrNoFeedback = errors.New("no feedback rows matched the export filter")

// promptSuffix is appended to the truncated document in jsonl prompts.
const promptSuffix = "\n\nSummarize this Terms of Service:"

// jsonlPromptChars is how much of the document a jsonl prompt carries.
const jsonlPromptChars = 3000

type trainingItem struct {
	ID              int64   `json:"id"`
	Input           string  `json:"input"`
	Output          string  `json:"output"`
	Rating          int     `json:"rating"`
	UserFeedback    *string `json:"user_feedback"`
	UserCorrections *string `json:"user_corrections"`
	ModelUsed       string  `json:"model_used"`
	Source          string  `json:"source"`
	CreatedAt       string  `json:"created_at"`
	TosURL          *string `json:"tos_url"`
}

type jsonExport struct {
	ExportDate    string         `json:"export_date"`
	TotalItems    int            `json:"total_items"`
	AverageRating float64        `json:"average_rating"`
	TrainingData  []trainingItem `json:"training_data"`
}

func encodeJSON(items []*domain.Feedback, now time.Time) ([]byte, error) {
	if len(items) == 0 {
		return nil, ErrNoFeedback
	}

	out := jsonExport{
		ExportDate:    now.UTC().Format(time.RFC3339),
		TotalItems:    len(items),
		AverageRating: averageRating(items),
		TrainingData:  make([]trainingItem, 0, len(items)),
	}
	for _, f := range items {
		out.TrainingData = append(out.TrainingData, trainingItem{
			ID:              f.ID,
			Input:           f.TosText,
			Output:          f.OriginalSummary,
			Rating:          f.Rating,
			UserFeedback:    optional(f.UserFeedback),
			UserCorrections: optional(f.UserCorrections),
			ModelUsed:       f.ModelUsed,
			Source:          f.Source,
			CreatedAt:       f.CreatedAt.UTC().Format(time.RFC3339),
			TosURL:          optional(f.TosURL),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

type promptCompletion struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

func encodeJSONL(items []*domain.Feedback) ([]byte, error) {
	var buf bytes.Buffer
	for i, f := range items {
		line, err := json.Marshal(promptCompletion{
			Prompt:     truncateRunes(f.TosText, jsonlPromptChars) + promptSuffix,
			Completion: f.OriginalSummary,
		})
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// encodeCSV reproduces the historical export layout: only the free-text
// User Feedback column is quote-wrapped and escaped. Commas or quotes in
// the other columns would corrupt the row; downstream consumers rely on
// the output staying exactly like this, so it is not "fixed" here.
func encodeCSV(items []*domain.Feedback) []byte {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "ID,Rating,Model,Source,Date,URL,ToS Length,Summary Length,User Feedback")

	for _, f := range items {
		escaped := strings.ReplaceAll(f.UserFeedback, `"`, `""`)
		lines = append(lines, fmt.Sprintf(`%d,%d,%s,%s,%s,%s,%d,%d,"%s"`,
			f.ID,
			f.Rating,
			f.ModelUsed,
			f.Source,
			f.CreatedAt.UTC().Format("2006-01-02"),
			f.TosURL,
			utf8.RuneCountInString(f.TosText),
			utf8.RuneCountInString(f.OriginalSummary),
			escaped,
		))
	}

	return []byte(strings.Join(lines, "\n"))
}

type trainingPair struct {
	Input        string  `json:"input"`
	Output       string  `json:"output"`
	Rating       int     `json:"rating"`
	QualityScore float64 `json:"quality_score"`
}

type pairsExport struct {
	Metadata struct {
		TotalPairs    int     `json:"total_pairs"`
		MinRating     int     `json:"min_rating"`
		AverageRating float64 `json:"average_rating"`
		ExportDate    string  `json:"export_date"`
	} `json:"metadata"`
	TrainingPairs []trainingPair `json:"training_pairs"`
}

func encodePairs(items []*domain.Feedback, minRating int, now time.Time) ([]byte, error) {
	var selected []*domain.Feedback
	pairs := make([]trainingPair, 0, len(items))
	for _, f := range items {
		if f.Rating < minRating {
			continue
		}
		selected = append(selected, f)
		pairs = append(pairs, trainingPair{
			Input:        f.TosText,
			Output:       f.OriginalSummary,
			Rating:       f.Rating,
			QualityScore: QualityScore(f),
		})
	}
	if len(pairs) == 0 {
		return nil, ErrNoFeedback
	}

	out := pairsExport{TrainingPairs: pairs}
	out.Metadata.TotalPairs = len(pairs)
	out.Metadata.MinRating = minRating
	out.Metadata.AverageRating = averageRating(selected)
	out.Metadata.ExportDate = now.UTC().Format(time.RFC3339)

	return json.MarshalIndent(out, "", "  ")
}

// QualityScore derives a [0, 1] weight for one feedback row: the rating
// normalized to 1, a bonus for substantial free-text feedback, and a
// penalty when the user supplied corrections.
func QualityScore(f *domain.Feedback) float64 {
	score := float64(f.Rating) / 5

	if utf8.RuneCountInString(f.UserFeedback) > 10 {
		score += 0.1
	}
	if f.UserCorrections != "" {
		score -= 0.05
	}

	return math.Min(1, math.Max(0, score))
}

func averageRating(items []*domain.Feedback) float64 {
	sum := 0
	for _, f := range items {
		sum += f.Rating
	}
	return math.Round(float64(sum)/float64(len(items))*100) / 100
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
