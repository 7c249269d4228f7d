package review

import (
	"context"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// Service is the boundary consumed by the bot/API front end: next due word,
// open a review turn, rate it, session statistics. It adds no policy of its
// own on top of the selector and coordinator.
type Service struct {
	selector *Selector
	coord    *Coordinator
	logs     ReviewLogStore
	now      func() time.Time
}

// NewService wires the review boundary. logs may be nil; SessionStats then
// reports empty stats.
func NewService(selector *Selector, coord *Coordinator, logs ReviewLogStore) *Service {
	return &Service{
		selector: selector,
		coord:    coord,
		logs:     logs,
		now:      time.Now,
	}
}

// RequestNextDue returns the most overdue word for userID, or nil when the
// queue is empty.
func (s *Service) RequestNextDue(ctx context.Context, userID int64) (*models.DueWord, error) {
	return s.selector.NextDue(ctx, userID, s.now().UTC())
}

// OpenReview opens a review turn for (userID, wordID).
func (s *Service) OpenReview(ctx context.Context, userID, wordID int64) (*Turn, error) {
	return s.coord.OpenTurn(ctx, userID, wordID)
}

// Rate applies a quality rating to an open turn and returns the committed
// learning record.
func (s *Service) Rate(ctx context.Context, turn *Turn, quality int) (*models.LearningRecord, error) {
	return turn.Submit(ctx, quality)
}

// SessionStats aggregates the ratings userID applied since the session
// started.
func (s *Service) SessionStats(ctx context.Context, userID int64, since time.Time) (models.SessionStats, error) {
	if s.logs == nil {
		return models.SessionStats{}, nil
	}
	return s.logs.SessionStats(ctx, userID, since)
}
