package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

func addWord(t *testing.T, store *MemoryStore, text string, language models.Language) *models.Word {
	t.Helper()
	w := &models.Word{Text: text, Language: language}
	require.NoError(t, store.CreateWord(context.Background(), w))
	return w
}

func TestMemoryStoreWords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	w := addWord(t, store, "apple", models.LanguageEN)
	require.NotZero(t, w.ID)

	got, err := store.GetWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Text)

	found, err := store.FindWord(ctx, "apple", models.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)

	// Same text in another language is a different word.
	_, err = store.FindWord(ctx, "apple", models.LanguageRU)
	assert.ErrorIs(t, err, ErrWordNotFound)

	err = store.CreateWord(ctx, &models.Word{Text: "apple", Language: models.LanguageEN})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.GetWord(ctx, 999)
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestMemoryStoreUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.UpsertOnFirstExposure(ctx, 7, 42, now)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Repetitions)
	assert.Equal(t, 2.5, first.Easiness)
	assert.Equal(t, 0, first.IntervalDays)
	assert.False(t, first.IsLearned)
	assert.Equal(t, int64(1), first.Version)
	assert.True(t, first.DueAt.Equal(now))

	// A later upsert must return the existing record untouched.
	first.Repetitions = 3
	require.NoError(t, store.ApplyUpdate(ctx, first, 1))

	second, err := store.UpsertOnFirstExposure(ctx, 7, 42, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, second.Repetitions)
	assert.Equal(t, int64(2), second.Version)
}

func TestMemoryStoreApplyUpdateCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	rec, err := store.UpsertOnFirstExposure(ctx, 1, 1, now)
	require.NoError(t, err)

	winner := *rec
	winner.Repetitions = 1
	require.NoError(t, store.ApplyUpdate(ctx, &winner, rec.Version))
	assert.Equal(t, rec.Version+1, winner.Version)

	loser := *rec
	loser.Repetitions = 2
	err = store.ApplyUpdate(ctx, &loser, rec.Version)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := store.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Repetitions)

	err = store.ApplyUpdate(ctx, &models.LearningRecord{UserID: 5, WordID: 5}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSessionStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, q := range []int{5, 3, 4} {
		require.NoError(t, store.AppendLog(ctx, &models.ReviewLog{
			UserID:     1,
			WordID:     int64(i + 1),
			Quality:    q,
			ReviewedAt: start.Add(time.Duration(i) * time.Minute),
		}))
	}
	// Before the session and for another user: excluded.
	require.NoError(t, store.AppendLog(ctx, &models.ReviewLog{
		UserID: 1, WordID: 9, Quality: 1, ReviewedAt: start.Add(-time.Hour),
	}))
	require.NoError(t, store.AppendLog(ctx, &models.ReviewLog{
		UserID: 2, WordID: 9, Quality: 1, ReviewedAt: start,
	}))

	stats, err := store.SessionStats(ctx, 1, start)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviewed)
	assert.InDelta(t, 4.0, stats.AverageQuality, 1e-9)

	empty, err := store.SessionStats(ctx, 3, start)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalReviewed)
	assert.Zero(t, empty.AverageQuality)
}
