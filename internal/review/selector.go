package review

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// Selector produces the ordered set of words currently due for a user.
// It keeps no cursor between calls; every call recomputes against fresh
// store state, so the caller drains the queue by calling again.
type Selector struct {
	records LearningStore
}

// NewSelector returns a due-word selector backed by records.
func NewSelector(records LearningStore) *Selector {
	return &Selector{records: records}
}

// DueWords returns at most limit words whose review time has passed as of
// asOf and that are not yet learned, oldest-overdue first with earlier-added
// words winning ties. A non-positive limit yields an empty result.
func (s *Selector) DueWords(ctx context.Context, userID int64, asOf time.Time, limit int) ([]models.DueWord, error) {
	if limit <= 0 {
		return nil, nil
	}
	due, err := s.records.ListDue(ctx, userID, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list due words: %w", err)
	}
	return due, nil
}

// NextDue returns the single most overdue word for userID, or nil when
// nothing is due.
func (s *Selector) NextDue(ctx context.Context, userID int64, asOf time.Time) (*models.DueWord, error) {
	due, err := s.DueWords(ctx, userID, asOf, 1)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	return &due[0], nil
}

// CountDue reports how many words are due for userID as of asOf.
func (s *Selector) CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error) {
	return s.records.CountDue(ctx, userID, asOf)
}
