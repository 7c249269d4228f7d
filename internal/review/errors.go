package review

import (
	"errors"

	"github.com/ruslan-korneev/lingooru-sub001/internal/sm2"
)

// Sentinel errors for the review scheduler. Callers test with errors.Is.
var (
	// ErrInvalidRating reports a quality rating outside [1, 5]. The turn is
	// left open; the caller may retry with a corrected value.
	ErrInvalidRating = sm2.ErrInvalidRating

	// ErrWordNotFound reports a reference to a word that does not exist.
	ErrWordNotFound = errors.New("review: word not found")

	// ErrNotFound reports a missing learning record.
	ErrNotFound = errors.New("review: learning record not found")

	// ErrConflict is returned by the store when an optimistic-concurrency
	// update lost to a concurrent writer.
	ErrConflict = errors.New("review: version conflict")

	// ErrStaleTurn reports that a turn lost the race against a concurrent
	// rating; the caller must reopen a fresh turn.
	ErrStaleTurn = errors.New("review: turn is stale")

	// ErrTurnClosed reports a submit or abandon on a turn that already
	// reached a terminal state. This is a caller ordering bug.
	ErrTurnClosed = errors.New("review: turn already closed")

	// ErrUnavailable wraps transient store failures (timeouts, lost
	// connections). Retryable by the caller with backoff.
	ErrUnavailable = errors.New("review: store unavailable")
)
