package review

import (
	"context"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// UserDueCount is one user together with the number of words currently due.
type UserDueCount struct {
	UserID int64 `db:"user_id"`
	Count  int   `db:"due_count"`
}

// LearningStore owns durable per-(user, word) scheduling state. The scheduler
// depends only on this contract; the relational implementation lives in
// internal/database and an in-memory one in this package.
type LearningStore interface {
	// Get returns the learning record for (userID, wordID) or ErrNotFound.
	Get(ctx context.Context, userID, wordID int64) (*models.LearningRecord, error)

	// UpsertOnFirstExposure returns the existing record for (userID, wordID)
	// or creates one with repetitions=0, easiness=2.5, interval=0, due
	// immediately. Idempotent.
	UpsertOnFirstExposure(ctx context.Context, userID, wordID int64, now time.Time) (*models.LearningRecord, error)

	// ApplyUpdate commits rec if the stored version still equals
	// expectedVersion, bumping rec.Version on success. Returns ErrConflict
	// when a concurrent rating won the race, ErrNotFound when the record
	// vanished.
	ApplyUpdate(ctx context.Context, rec *models.LearningRecord, expectedVersion int64) error

	// ListDue returns up to limit words due for review as of asOf, joined
	// with their records, ordered by due time ascending and added time
	// ascending within ties.
	ListDue(ctx context.Context, userID int64, asOf time.Time, limit int) ([]models.DueWord, error)

	// CountDue returns the number of words due for userID as of asOf.
	CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error)

	// ListUsersWithDue returns every user that has at least one due word,
	// with the due count, ordered by user ID.
	ListUsersWithDue(ctx context.Context, asOf time.Time) ([]UserDueCount, error)
}

// WordStore is the read-mostly word catalog. Words are immutable once
// referenced by a learning record.
type WordStore interface {
	// GetWord returns the word by ID or ErrWordNotFound.
	GetWord(ctx context.Context, id int64) (*models.Word, error)

	// FindWord looks a word up by its unique (text, language) pair,
	// returning ErrWordNotFound when absent.
	FindWord(ctx context.Context, text string, language models.Language) (*models.Word, error)

	// CreateWord inserts a new word and fills in its ID. A duplicate
	// (text, language) pair is reported as ErrConflict.
	CreateWord(ctx context.Context, w *models.Word) error
}

// ReviewLogStore keeps the append-only rating history.
type ReviewLogStore interface {
	AppendLog(ctx context.Context, entry *models.ReviewLog) error

	// SessionStats aggregates ratings applied by userID at or after since.
	SessionStats(ctx context.Context, userID int64, since time.Time) (models.SessionStats, error)
}
