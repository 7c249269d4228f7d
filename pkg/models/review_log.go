package models

import "time"

// ReviewLog is one append-only history entry per applied rating, kept for
// session statistics and analytics.
type ReviewLog struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	WordID     int64     `json:"word_id" db:"word_id"`
	Quality    int       `json:"quality" db:"quality"` // 1-5 rating as submitted
	ReviewedAt time.Time `json:"reviewed_at" db:"reviewed_at"`
}

// SessionStats summarizes ratings applied since a session start.
type SessionStats struct {
	TotalReviewed  int     `json:"total_reviewed"`
	AverageQuality float64 `json:"average_quality"`
}
