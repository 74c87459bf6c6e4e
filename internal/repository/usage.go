package repository

import (
	"context"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

type UsageRepository struct {
	db dbtx
}

func NewUsageRepository(db dbtx) *UsageRepository {
	return &UsageRepository{db: db}
}

// Create inserts one usage row. Rows are immutable once written.
func (r *UsageRepository) Create(ctx context.Context, u *domain.Usage) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage (user_id, action_type, tokens_used) VALUES ($1, $2, $3)`,
		u.UserID, string(u.ActionType), u.TokensUsed,
	)
	return err
}

// StatsForUser aggregates one caller's usage rows.
func (r *UsageRepository) StatsForUser(ctx context.Context, userID string) (*domain.UsageStats, error) {
	var stats domain.UsageStats
	var totalTokens *int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) AS total_requests,
		        SUM(tokens_used) AS total_tokens,
		        COUNT(*) FILTER (WHERE action_type = 'analyze') AS analyses,
		        COUNT(*) FILTER (WHERE action_type = 'ask') AS questions
		 FROM usage
		 WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalRequests, &totalTokens, &stats.Analyses, &stats.Questions)
	if err != nil {
		return nil, err
	}
	if totalTokens != nil {
		stats.TotalTokens = *totalTokens
	}
	return &stats, nil
}
