package domain

import "time"

// ActionType identifies which billed operation produced a usage row.
type ActionType string

const (
	ActionAnalyze ActionType = "analyze"
	ActionAsk     ActionType = "ask"
)

// Usage is one billed gateway call. Created once per successful call,
// immutable, never deleted.
type Usage struct {
	ID         int64
	UserID     string
	ActionType ActionType
	TokensUsed int64
	CreatedAt  time.Time
}

// ValidateUsage checks the fields required before insert.
func ValidateUsage(u *Usage) error {
	if u == nil {
		return NewDomainError(ErrCodeValidation, "usage cannot be nil")
	}
	if u.UserID == "" {
		return NewDomainError(ErrCodeValidation, "user id is required")
	}
	if u.ActionType != ActionAnalyze && u.ActionType != ActionAsk {
		return NewDomainError(ErrCodeValidation, "invalid action type")
	}
	if u.TokensUsed < 0 {
		return NewDomainError(ErrCodeValidation, "tokens used cannot be negative")
	}
	return nil
}

// UsageStats aggregates a caller's usage rows.
type UsageStats struct {
	TotalRequests int64
	TotalTokens   int64
	Analyses      int64
	Questions     int64
}
