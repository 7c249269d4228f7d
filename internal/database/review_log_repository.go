package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// ReviewLogRepository implements review.ReviewLogStore. The table is
// append-only history used for session statistics.
type ReviewLogRepository struct {
	db *DB
}

// NewReviewLogRepository creates a review log repository.
func NewReviewLogRepository(db *DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// AppendLog inserts one rating history entry and fills in its generated ID.
func (r *ReviewLogRepository) AppendLog(ctx context.Context, entry *models.ReviewLog) error {
	if r.db.Driver() == DriverPostgres {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO review_logs (user_id, word_id, quality, reviewed_at)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			entry.UserID, entry.WordID, entry.Quality, entry.ReviewedAt,
		).Scan(&entry.ID)
		if err != nil {
			return fmt.Errorf("append review log: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO review_logs (user_id, word_id, quality, reviewed_at)
		 VALUES ($1, $2, $3, $4)`,
		entry.UserID, entry.WordID, entry.Quality, entry.ReviewedAt)
	if err != nil {
		return fmt.Errorf("append review log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append review log id: %w", err)
	}
	entry.ID = id
	return nil
}

// SessionStats aggregates ratings applied by userID at or after since.
func (r *ReviewLogRepository) SessionStats(ctx context.Context, userID int64, since time.Time) (models.SessionStats, error) {
	var row struct {
		Total int     `db:"total"`
		Avg   float64 `db:"avg_quality"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT COUNT(*) AS total, COALESCE(AVG(quality), 0) AS avg_quality
		 FROM review_logs
		 WHERE user_id = $1 AND reviewed_at >= $2`,
		userID, since)
	if err != nil {
		return models.SessionStats{}, fmt.Errorf("session stats: %w", err)
	}
	return models.SessionStats{TotalReviewed: row.Total, AverageQuality: row.Avg}, nil
}
