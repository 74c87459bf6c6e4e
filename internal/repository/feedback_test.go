package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

func feedbackColumns() []string {
	return []string{
		"id", "user_id", "tos_url", "tos_text", "original_summary", "rating",
		"user_feedback", "user_corrections", "model_used", "source", "created_at", "updated_at",
	}
}

func strptr(s string) *string { return &s }

func TestFeedbackRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO feedback").
		WithArgs("user-1", strptr("https://example.com/tos"), "text", "summary", 5,
			(*string)(nil), (*string)(nil), domain.DefaultModel, domain.DefaultSource).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := NewFeedbackRepository(mock)
	id, err := repo.Create(context.Background(), &domain.Feedback{
		UserID:          "user-1",
		TosURL:          "https://example.com/tos",
		TosText:         "text",
		OriginalSummary: "summary",
		Rating:          5,
		ModelUsed:       domain.DefaultModel,
		Source:          domain.DefaultSource,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_List_NoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM feedback\\s+ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(feedbackColumns()).
			AddRow(int64(2), "u2", (*string)(nil), "text two", "summary two", 4,
				strptr("helpful"), (*string)(nil), domain.DefaultModel, "web", now, now).
			AddRow(int64(1), "u1", strptr("https://a.example/tos"), "text one", "summary one", 5,
				(*string)(nil), strptr("fix this"), domain.DefaultModel, "web", now.Add(-time.Hour), now.Add(-time.Hour)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM feedback").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	repo := NewFeedbackRepository(mock)
	items, total, err := repo.List(context.Background(), ListFilter{Limit: 50, Offset: 0})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "helpful", items[0].UserFeedback)
	assert.Empty(t, items[0].TosURL)
	assert.Equal(t, "https://a.example/tos", items[1].TosURL)
	assert.Equal(t, "fix this", items[1].UserCorrections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_List_RatingFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rating := 5
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM feedback\\s+WHERE rating = \\$1").
		WithArgs(5, 10, 0).
		WillReturnRows(pgxmock.NewRows(feedbackColumns()).
			AddRow(int64(7), "u1", (*string)(nil), "text", "summary", 5,
				(*string)(nil), (*string)(nil), domain.DefaultModel, "web", now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM feedback WHERE rating = \\$1").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	repo := NewFeedbackRepository(mock)
	items, total, err := repo.List(context.Background(), ListFilter{Rating: &rating, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_ListForExport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM feedback\\s+WHERE rating >= \\$1").
		WithArgs(4, 1000).
		WillReturnRows(pgxmock.NewRows(feedbackColumns()).
			AddRow(int64(3), "u3", (*string)(nil), "text", "summary", 4,
				(*string)(nil), (*string)(nil), domain.DefaultModel, "extension", now, now))

	repo := NewFeedbackRepository(mock)
	items, err := repo.ListForExport(context.Background(), 4, 1000)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "extension", items[0].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	avg := 4.33
	mock.ExpectQuery("SELECT rating,").
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count", "percentage"}).
			AddRow(5, int64(2), 66.67).
			AddRow(3, int64(1), 33.33))
	mock.ExpectQuery("SELECT ROUND\\(AVG\\(rating\\), 2\\), COUNT\\(\\*\\) FROM feedback").
		WillReturnRows(pgxmock.NewRows([]string{"round", "count"}).AddRow(&avg, int64(3)))
	mock.ExpectQuery("SELECT source, COUNT\\(\\*\\) FROM feedback GROUP BY source").
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"}).
			AddRow("web", int64(2)).
			AddRow("extension", int64(1)))

	repo := NewFeedbackRepository(mock)
	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.RatingDistribution, 2)
	assert.Equal(t, 5, stats.RatingDistribution[0].Rating)
	assert.InDelta(t, 66.67, stats.RatingDistribution[0].Percentage, 0.001)
	assert.InDelta(t, 4.33, stats.AverageRating, 0.001)
	assert.Equal(t, int64(3), stats.TotalFeedback)
	require.Len(t, stats.BySource, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Stats_EmptyTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT rating,").
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count", "percentage"}))
	mock.ExpectQuery("SELECT ROUND\\(AVG\\(rating\\), 2\\), COUNT\\(\\*\\) FROM feedback").
		WillReturnRows(pgxmock.NewRows([]string{"round", "count"}).AddRow((*float64)(nil), int64(0)))
	mock.ExpectQuery("SELECT source, COUNT\\(\\*\\) FROM feedback GROUP BY source").
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"}))

	repo := NewFeedbackRepository(mock)
	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.AverageRating)
	assert.Zero(t, stats.TotalFeedback)
	assert.Empty(t, stats.RatingDistribution)
}
