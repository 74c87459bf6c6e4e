package domain

import "time"

// DefaultModel is the baseline generation model. It is the feedback table
// default and the fallback suggested when a premium model is unavailable.
const DefaultModel = "claude-3-haiku-20240307"

// DefaultSource tags feedback submitted without an explicit source.
const DefaultSource = "web"

// Feedback is one user rating of one generated summary. Rows are written
// once by the feedback endpoint and only ever read afterwards; the export
// pipeline turns them into training data.
type Feedback struct {
	ID              int64
	UserID          string
	TosURL          string
	TosText         string
	OriginalSummary string
	Rating          int
	UserFeedback    string
	UserCorrections string
	ModelUsed       string
	Source          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidRating reports whether r is an allowed rating value.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// ValidateFeedback checks the fields required before insert.
func ValidateFeedback(f *Feedback) error {
	if f == nil {
		return NewDomainError(ErrCodeValidation, "feedback cannot be nil")
	}
	if f.TosText == "" || f.OriginalSummary == "" || f.Rating == 0 {
		return ErrFeedbackIncomplete
	}
	if !ValidRating(f.Rating) {
		return ErrRatingOutOfRange
	}
	if f.UserID == "" {
		return NewDomainError(ErrCodeValidation, "user id is required")
	}
	return nil
}

// RatingBucket is one row of the feedback rating histogram.
type RatingBucket struct {
	Rating     int
	Count      int64
	Percentage float64
}

// SourceCount is the number of feedback rows tagged with one source.
type SourceCount struct {
	Source string
	Count  int64
}

// FeedbackStats aggregates the feedback table for the stats endpoint.
type FeedbackStats struct {
	RatingDistribution []RatingBucket
	AverageRating      float64
	TotalFeedback      int64
	BySource           []SourceCount
}
