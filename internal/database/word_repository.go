package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// WordRepository implements review.WordStore on the relational store.
type WordRepository struct {
	db *DB
}

// NewWordRepository creates a word repository.
func NewWordRepository(db *DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetWord returns a word by ID.
func (r *WordRepository) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, "SELECT * FROM words WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get word %d: %w", id, err)
	}
	return &w, nil
}

// FindWord returns a word by its unique (text, language) pair.
func (r *WordRepository) FindWord(ctx context.Context, text string, language models.Language) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, "SELECT * FROM words WHERE text = $1 AND language = $2", text, language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find word %q/%s: %w", text, language, err)
	}
	return &w, nil
}

// CreateWord inserts a word and fills in its generated ID.
func (r *WordRepository) CreateWord(ctx context.Context, w *models.Word) error {
	if r.db.Driver() == DriverPostgres {
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO words (text, language, phonetic, audio_url, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			w.Text, w.Language, w.Phonetic, w.AudioURL, w.CreatedAt,
		).Scan(&w.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return review.ErrConflict
			}
			return fmt.Errorf("insert word: %w", err)
		}
		return nil
	}

	// SQLite has no usable RETURNING through this driver version; fall back
	// to LastInsertId.
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO words (text, language, phonetic, audio_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.Text, w.Language, w.Phonetic, w.AudioURL, w.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return review.ErrConflict
		}
		return fmt.Errorf("insert word: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert word id: %w", err)
	}
	w.ID = id
	return nil
}

const pqUniqueViolation pq.ErrorCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrConstraint
	}
	return false
}
