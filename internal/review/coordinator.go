package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruslan-korneev/lingooru-sub001/internal/sm2"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// TurnState is the lifecycle state of one review turn.
type TurnState int

const (
	// TurnPresented means the word is shown and exactly one rating is
	// awaited.
	TurnPresented TurnState = iota
	// TurnClosed means the turn finished: a rating committed, or the turn
	// was abandoned.
	TurnClosed
	// TurnAborted means the turn lost a concurrency race and its snapshot
	// is stale.
	TurnAborted
)

func (s TurnState) String() string {
	switch s {
	case TurnPresented:
		return "presented"
	case TurnClosed:
		return "closed"
	case TurnAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CoordinatorConfig tunes review turn behavior.
type CoordinatorConfig struct {
	// LearnedAfter marks a record as learned once its repetition count
	// reaches this threshold. Zero disables the policy.
	LearnedAfter int
}

// DefaultCoordinatorConfig mirrors the production policy: a word counts as
// learned after five consecutive successful recalls.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{LearnedAfter: 5}
}

// Coordinator orchestrates review turns: it presents a word, accepts exactly
// one rating, applies the score engine and commits through the learning
// store. It holds no lock across store calls; concurrent ratings for the
// same (user, word) are serialized by the store's version check, never by an
// in-process mutex.
type Coordinator struct {
	engine  *sm2.Engine
	records LearningStore
	words   WordStore
	logs    ReviewLogStore
	cfg     CoordinatorConfig
	log     *logrus.Logger
	now     func() time.Time
}

// NewCoordinator wires a coordinator. logs may be nil to skip rating
// history; logger may be nil to use the logrus standard logger.
func NewCoordinator(engine *sm2.Engine, records LearningStore, words WordStore, logs ReviewLogStore, cfg CoordinatorConfig, logger *logrus.Logger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		engine:  engine,
		records: records,
		words:   words,
		logs:    logs,
		cfg:     cfg,
		log:     logger,
		now:     time.Now,
	}
}

// Turn is one open presentation of a word to a user. It lives in process
// memory only, between "word shown" and "rating applied or abandoned".
type Turn struct {
	coord *Coordinator
	word  models.Word

	mu       sync.Mutex
	state    TurnState
	snapshot models.LearningRecord
}

// Word returns the word presented by this turn.
func (t *Turn) Word() models.Word { return t.word }

// Record returns the learning-record snapshot taken when the turn opened.
func (t *Turn) Record() models.LearningRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// State returns the current turn state.
func (t *Turn) State() TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// OpenTurn fetches or creates the learning record for (userID, wordID),
// snapshots it and returns a presented turn. A second open turn for the same
// pair is allowed; the store's version check decides which rating wins.
func (c *Coordinator) OpenTurn(ctx context.Context, userID, wordID int64) (*Turn, error) {
	word, err := c.words.GetWord(ctx, wordID)
	if err != nil {
		return nil, c.storeErr("get word", err)
	}

	rec, err := c.records.UpsertOnFirstExposure(ctx, userID, wordID, c.now().UTC())
	if err != nil {
		return nil, c.storeErr("upsert learning record", err)
	}

	return &Turn{
		coord:    c,
		word:     *word,
		state:    TurnPresented,
		snapshot: *rec,
	}, nil
}

// Submit applies one quality rating (1-5) to an open turn.
//
// On success the turn closes and the committed record is returned. An
// invalid rating leaves the turn open for a corrected retry. If a concurrent
// rating committed first the turn aborts and ErrStaleTurn is returned: the
// caller must reopen a fresh turn. Transient store failures keep the turn
// open and surface as ErrUnavailable.
func (t *Turn) Submit(ctx context.Context, quality int) (*models.LearningRecord, error) {
	t.mu.Lock()
	if t.state != TurnPresented {
		t.mu.Unlock()
		return nil, fmt.Errorf("submit rating in state %s: %w", t.state, ErrTurnClosed)
	}
	snapshot := t.snapshot
	t.mu.Unlock()

	c := t.coord
	next, err := c.engine.ComputeNext(quality, snapshot.Repetitions, snapshot.Easiness, snapshot.IntervalDays)
	if err != nil {
		// Turn stays presented: the caller re-prompts and retries.
		return nil, err
	}

	now := c.now().UTC()
	updated := snapshot
	updated.Repetitions = next.Repetitions
	updated.Easiness = next.Easiness
	updated.IntervalDays = next.IntervalDays
	updated.DueAt = now.AddDate(0, 0, next.IntervalDays)
	updated.LastReviewAt = now
	if c.cfg.LearnedAfter > 0 && next.Repetitions >= c.cfg.LearnedAfter {
		updated.IsLearned = true
	}

	if err := c.records.ApplyUpdate(ctx, &updated, snapshot.Version); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			// Lost the race against a concurrent rating. If the winner was
			// a submit on this very turn it already closed it; leave that
			// terminal state in place.
			t.mu.Lock()
			if t.state == TurnPresented {
				t.state = TurnAborted
			}
			t.mu.Unlock()
			return nil, fmt.Errorf("rating for user %d word %d: %w", snapshot.UserID, snapshot.WordID, ErrStaleTurn)
		}
		return nil, c.storeErr("apply rating", err)
	}

	t.mu.Lock()
	if t.state == TurnPresented {
		t.state = TurnClosed
	}
	t.mu.Unlock()

	c.recordLog(ctx, snapshot.UserID, snapshot.WordID, quality, now)

	return &updated, nil
}

// Abandon cancels an open turn without touching the store. It is always
// safe: no partial mutation exists to unwind.
func (t *Turn) Abandon() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TurnPresented {
		return fmt.Errorf("abandon turn in state %s: %w", t.state, ErrTurnClosed)
	}
	t.state = TurnClosed
	return nil
}

// recordLog appends the rating to the review history. History is advisory:
// a failure is logged, never surfaced to the learner.
func (c *Coordinator) recordLog(ctx context.Context, userID, wordID int64, quality int, at time.Time) {
	if c.logs == nil {
		return
	}
	entry := &models.ReviewLog{
		UserID:     userID,
		WordID:     wordID,
		Quality:    quality,
		ReviewedAt: at,
	}
	if err := c.logs.AppendLog(ctx, entry); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"word_id": wordID,
		}).Warn("failed to append review log")
	}
}

// storeErr passes domain sentinels through and wraps everything else as a
// retryable ErrUnavailable.
func (c *Coordinator) storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrWordNotFound) || errors.Is(err, ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
