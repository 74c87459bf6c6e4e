package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

// dbtx is satisfied by *pgxpool.Pool, pgx.Tx, and the pgxmock pool used in
// tests.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type FeedbackRepository struct {
	db dbtx
}

func NewFeedbackRepository(db dbtx) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts one feedback row and returns the store-assigned id.
func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO feedback (user_id, tos_url, tos_text, original_summary, rating, user_feedback, user_corrections, model_used, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		f.UserID,
		nullableString(f.TosURL),
		f.TosText,
		f.OriginalSummary,
		f.Rating,
		nullableString(f.UserFeedback),
		nullableString(f.UserCorrections),
		f.ModelUsed,
		f.Source,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListFilter narrows the administrative feedback listing.
type ListFilter struct {
	// Rating filters on an exact rating when non-nil.
	Rating *int
	Limit  int
	Offset int
}

// List returns feedback rows newest-first plus the total count matching the
// filter (ignoring limit/offset).
func (r *FeedbackRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Feedback, int64, error) {
	var rows pgx.Rows
	var err error

	if filter.Rating != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, user_id, tos_url, tos_text, original_summary, rating, user_feedback, user_corrections, model_used, source, created_at, updated_at
			 FROM feedback
			 WHERE rating = $1
			 ORDER BY created_at DESC
			 LIMIT $2 OFFSET $3`,
			*filter.Rating, filter.Limit, filter.Offset,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, user_id, tos_url, tos_text, original_summary, rating, user_feedback, user_corrections, model_used, source, created_at, updated_at
			 FROM feedback
			 ORDER BY created_at DESC
			 LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset,
		)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanFeedbackRows(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if filter.Rating != nil {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM feedback WHERE rating = $1`, *filter.Rating).Scan(&total)
	} else {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListForExport returns up to limit rows with rating >= minRating,
// newest-first. The export pipeline is the only caller.
func (r *FeedbackRepository) ListForExport(ctx context.Context, minRating, limit int) ([]*domain.Feedback, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, tos_url, tos_text, original_summary, rating, user_feedback, user_corrections, model_used, source, created_at, updated_at
		 FROM feedback
		 WHERE rating >= $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		minRating, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedbackRows(rows)
}

// Stats aggregates the whole feedback table. Percentages are computed in
// SQL against the full table count, rounded to two decimals.
func (r *FeedbackRepository) Stats(ctx context.Context) (*domain.FeedbackStats, error) {
	stats := &domain.FeedbackStats{}

	rows, err := r.db.Query(ctx,
		`SELECT rating,
		        COUNT(*) AS count,
		        ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM feedback), 2) AS percentage
		 FROM feedback
		 GROUP BY rating
		 ORDER BY rating DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.RatingBucket
		if err := rows.Scan(&b.Rating, &b.Count, &b.Percentage); err != nil {
			return nil, err
		}
		stats.RatingDistribution = append(stats.RatingDistribution, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg *float64
	err = r.db.QueryRow(ctx,
		`SELECT ROUND(AVG(rating), 2), COUNT(*) FROM feedback`,
	).Scan(&avg, &stats.TotalFeedback)
	if err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageRating = *avg
	}

	srcRows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) FROM feedback GROUP BY source`,
	)
	if err != nil {
		return nil, err
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var s domain.SourceCount
		if err := srcRows.Scan(&s.Source, &s.Count); err != nil {
			return nil, err
		}
		stats.BySource = append(stats.BySource, s)
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func scanFeedbackRows(rows pgx.Rows) ([]*domain.Feedback, error) {
	var items []*domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		var tosURL, userFeedback, userCorrections *string
		err := rows.Scan(
			&f.ID, &f.UserID, &tosURL, &f.TosText, &f.OriginalSummary, &f.Rating,
			&userFeedback, &userCorrections, &f.ModelUsed, &f.Source, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if tosURL != nil {
			f.TosURL = *tosURL
		}
		if userFeedback != nil {
			f.UserFeedback = *userFeedback
		}
		if userCorrections != nil {
			f.UserCorrections = *userCorrections
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
