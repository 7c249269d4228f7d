package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
	"github.com/ruslan-korneev/lingooru-sub001/internal/sm2"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// LearningRecordRepository implements review.LearningStore. Writes go
// through an optimistic version check so two concurrent ratings for one
// (user, word) pair can never both commit.
type LearningRecordRepository struct {
	db *DB
}

// NewLearningRecordRepository creates a learning record repository.
func NewLearningRecordRepository(db *DB) *LearningRecordRepository {
	return &LearningRecordRepository{db: db}
}

// Get returns the record for (userID, wordID) or review.ErrNotFound.
func (r *LearningRecordRepository) Get(ctx context.Context, userID, wordID int64) (*models.LearningRecord, error) {
	var rec models.LearningRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM learning_records WHERE user_id = $1 AND word_id = $2",
		userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get learning record: %w", err)
	}
	return &rec, nil
}

// UpsertOnFirstExposure creates the record for (userID, wordID) if it does
// not exist and returns whichever row is stored. ON CONFLICT DO NOTHING
// keeps the operation idempotent under concurrent first exposures.
func (r *LearningRecordRepository) UpsertOnFirstExposure(ctx context.Context, userID, wordID int64, now time.Time) (*models.LearningRecord, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO learning_records
			(user_id, word_id, repetitions, easiness, interval_days,
			 due_at, is_learned, added_at, last_review_at, version)
		 VALUES ($1, $2, 0, $3, 0, $4, FALSE, $4, $5, 1)
		 ON CONFLICT (user_id, word_id) DO NOTHING`,
		userID, wordID, sm2.DefaultEasiness, now, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("create learning record: %w", err)
	}
	return r.Get(ctx, userID, wordID)
}

// ApplyUpdate commits rec if the stored version still equals
// expectedVersion. On success rec.Version is advanced to the committed
// value.
func (r *LearningRecordRepository) ApplyUpdate(ctx context.Context, rec *models.LearningRecord, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE learning_records SET
			repetitions = $1,
			easiness = $2,
			interval_days = $3,
			due_at = $4,
			is_learned = $5,
			last_review_at = $6,
			version = version + 1
		 WHERE user_id = $7 AND word_id = $8 AND version = $9`,
		rec.Repetitions, rec.Easiness, rec.IntervalDays,
		rec.DueAt, rec.IsLearned, rec.LastReviewAt,
		rec.UserID, rec.WordID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update learning record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update learning record: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or a concurrent rating bumped the version.
		if _, err := r.Get(ctx, rec.UserID, rec.WordID); err != nil {
			return err
		}
		return review.ErrConflict
	}
	rec.Version = expectedVersion + 1
	return nil
}

// ListDue returns due words joined with their learning records, ordered by
// due time then added time.
func (r *LearningRecordRepository) ListDue(ctx context.Context, userID int64, asOf time.Time, limit int) ([]models.DueWord, error) {
	var rows []dueRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT
			w.id AS w_id, w.text AS w_text, w.language AS w_language,
			w.phonetic AS w_phonetic, w.audio_url AS w_audio_url,
			w.created_at AS w_created_at,
			lr.user_id, lr.word_id, lr.repetitions, lr.easiness,
			lr.interval_days, lr.due_at, lr.is_learned, lr.added_at,
			lr.last_review_at, lr.version
		 FROM learning_records lr
		 JOIN words w ON w.id = lr.word_id
		 WHERE lr.user_id = $1 AND lr.is_learned = FALSE AND lr.due_at <= $2
		 ORDER BY lr.due_at ASC, lr.added_at ASC
		 LIMIT $3`,
		userID, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list due words: %w", err)
	}
	due := make([]models.DueWord, 0, len(rows))
	for _, row := range rows {
		due = append(due, row.toDueWord())
	}
	return due, nil
}

// CountDue returns the number of due, not yet learned words for userID.
func (r *LearningRecordRepository) CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM learning_records
		 WHERE user_id = $1 AND is_learned = FALSE AND due_at <= $2`,
		userID, asOf)
	if err != nil {
		return 0, fmt.Errorf("count due words: %w", err)
	}
	return count, nil
}

// ListUsersWithDue returns every user holding at least one due word.
func (r *LearningRecordRepository) ListUsersWithDue(ctx context.Context, asOf time.Time) ([]review.UserDueCount, error) {
	var counts []review.UserDueCount
	err := r.db.SelectContext(ctx, &counts,
		`SELECT user_id, COUNT(*) AS due_count
		 FROM learning_records
		 WHERE is_learned = FALSE AND due_at <= $1
		 GROUP BY user_id
		 ORDER BY user_id`,
		asOf)
	if err != nil {
		return nil, fmt.Errorf("list users with due words: %w", err)
	}
	return counts, nil
}

// dueRow flattens the words/learning_records join for sqlx scanning.
type dueRow struct {
	WID        int64           `db:"w_id"`
	WText      string          `db:"w_text"`
	WLanguage  models.Language `db:"w_language"`
	WPhonetic  string          `db:"w_phonetic"`
	WAudioURL  string          `db:"w_audio_url"`
	WCreatedAt time.Time       `db:"w_created_at"`

	UserID       int64     `db:"user_id"`
	WordID       int64     `db:"word_id"`
	Repetitions  int       `db:"repetitions"`
	Easiness     float64   `db:"easiness"`
	IntervalDays int       `db:"interval_days"`
	DueAt        time.Time `db:"due_at"`
	IsLearned    bool      `db:"is_learned"`
	AddedAt      time.Time `db:"added_at"`
	LastReviewAt time.Time `db:"last_review_at"`
	Version      int64     `db:"version"`
}

func (r dueRow) toDueWord() models.DueWord {
	return models.DueWord{
		Word: models.Word{
			ID:        r.WID,
			Text:      r.WText,
			Language:  r.WLanguage,
			Phonetic:  r.WPhonetic,
			AudioURL:  r.WAudioURL,
			CreatedAt: r.WCreatedAt,
		},
		Record: models.LearningRecord{
			UserID:       r.UserID,
			WordID:       r.WordID,
			Repetitions:  r.Repetitions,
			Easiness:     r.Easiness,
			IntervalDays: r.IntervalDays,
			DueAt:        r.DueAt,
			IsLearned:    r.IsLearned,
			AddedAt:      r.AddedAt,
			LastReviewAt: r.LastReviewAt,
			Version:      r.Version,
		},
	}
}
