package models

import "time"

// LearningRecord tracks SM-2 scheduling state for one (user, word) pair.
// It is mutated only by the review coordinator applying a rating; the Version
// column serializes concurrent rating submissions.
type LearningRecord struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	WordID       int64     `json:"word_id" db:"word_id"`
	Repetitions  int       `json:"repetitions" db:"repetitions"`     // consecutive successful recalls since last reset
	Easiness     float64   `json:"easiness" db:"easiness"`           // SM-2 EF, never below 1.3
	IntervalDays int       `json:"interval_days" db:"interval_days"` // days until the next review
	DueAt        time.Time `json:"due_at" db:"due_at"`
	IsLearned    bool      `json:"is_learned" db:"is_learned"`
	AddedAt      time.Time `json:"added_at" db:"added_at"`
	LastReviewAt time.Time `json:"last_review_at" db:"last_review_at"`
	Version      int64     `json:"version" db:"version"`
}

// DueWord pairs a word with the learning record that made it due.
type DueWord struct {
	Word   Word
	Record LearningRecord
}
