package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createWord(t *testing.T, words *WordRepository, text string, at time.Time) *models.Word {
	t.Helper()
	w := &models.Word{Text: text, Language: models.LanguageEN, CreatedAt: at}
	require.NoError(t, words.CreateWord(context.Background(), w))
	require.NotZero(t, w.ID)
	return w
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "dsn")
	assert.Error(t, err)
}

func TestWordRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	words := NewWordRepository(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	w := createWord(t, words, "apple", now)

	got, err := words.GetWord(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Text)
	assert.Equal(t, models.LanguageEN, got.Language)

	found, err := words.FindWord(ctx, "apple", models.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, w.ID, found.ID)

	_, err = words.GetWord(ctx, 9999)
	assert.ErrorIs(t, err, review.ErrWordNotFound)

	_, err = words.FindWord(ctx, "apple", models.LanguageKO)
	assert.ErrorIs(t, err, review.ErrWordNotFound)

	// (text, language) is unique.
	err = words.CreateWord(ctx, &models.Word{Text: "apple", Language: models.LanguageEN, CreatedAt: now})
	assert.ErrorIs(t, err, review.ErrConflict)
}

func TestLearningRecordUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	words := NewWordRepository(db)
	records := NewLearningRecordRepository(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	w := createWord(t, words, "apple", now)

	_, err := records.Get(ctx, 1, w.ID)
	assert.ErrorIs(t, err, review.ErrNotFound)

	rec, err := records.UpsertOnFirstExposure(ctx, 1, w.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Repetitions)
	assert.Equal(t, 2.5, rec.Easiness)
	assert.Equal(t, 0, rec.IntervalDays)
	assert.False(t, rec.IsLearned)
	assert.Equal(t, int64(1), rec.Version)
	assert.True(t, rec.DueAt.Equal(now))
	assert.True(t, rec.AddedAt.Equal(now))

	// Idempotent: a second upsert returns the existing row.
	rec.Repetitions = 2
	require.NoError(t, records.ApplyUpdate(ctx, rec, 1))

	again, err := records.UpsertOnFirstExposure(ctx, 1, w.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, again.Repetitions)
	assert.Equal(t, int64(2), again.Version)
}

func TestLearningRecordOptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	words := NewWordRepository(db)
	records := NewLearningRecordRepository(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	w := createWord(t, words, "apple", now)
	rec, err := records.UpsertOnFirstExposure(ctx, 1, w.ID, now)
	require.NoError(t, err)

	winner := *rec
	winner.Repetitions = 1
	winner.IntervalDays = 1
	winner.DueAt = now.AddDate(0, 0, 1)
	winner.LastReviewAt = now
	require.NoError(t, records.ApplyUpdate(ctx, &winner, rec.Version))
	assert.Equal(t, int64(2), winner.Version)

	// Second write with the stale version loses.
	loser := *rec
	loser.Repetitions = 1
	err = records.ApplyUpdate(ctx, &loser, rec.Version)
	assert.ErrorIs(t, err, review.ErrConflict)

	stored, err := records.Get(ctx, 1, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Repetitions)
	assert.Equal(t, int64(2), stored.Version)

	// Missing rows are reported as not found, not as a conflict.
	missing := models.LearningRecord{UserID: 9, WordID: w.ID}
	err = records.ApplyUpdate(ctx, &missing, 1)
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestListDueOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	words := NewWordRepository(db)
	records := NewLearningRecordRepository(db)
	asOf := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seed := func(text string, dueAt, addedAt time.Time, learned bool) {
		w := createWord(t, words, text, addedAt)
		rec, err := records.UpsertOnFirstExposure(ctx, 1, w.ID, addedAt)
		require.NoError(t, err)
		rec.DueAt = dueAt
		rec.IsLearned = learned
		rec.LastReviewAt = addedAt
		require.NoError(t, records.ApplyUpdate(ctx, rec, rec.Version))
	}

	tie := asOf.Add(-2 * time.Hour)
	seed("tie-added-later", tie, asOf.Add(-10*time.Hour), false)
	seed("tie-added-earlier", tie, asOf.Add(-20*time.Hour), false)
	seed("due-later", asOf.Add(-time.Hour), asOf.Add(-30*time.Hour), false)
	seed("not-due", asOf.Add(time.Hour), asOf.Add(-30*time.Hour), false)
	seed("learned", tie, asOf.Add(-30*time.Hour), true)

	due, err := records.ListDue(ctx, 1, asOf, 10)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "tie-added-earlier", due[0].Word.Text)
	assert.Equal(t, "tie-added-later", due[1].Word.Text)
	assert.Equal(t, "due-later", due[2].Word.Text)

	limited, err := records.ListDue(ctx, 1, asOf, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	count, err := records.CountDue(ctx, 1, asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListUsersWithDue(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	words := NewWordRepository(db)
	records := NewLearningRecordRepository(db)
	asOf := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := createWord(t, words, "alpha", asOf)
	b := createWord(t, words, "beta", asOf)

	for _, userID := range []int64{10, 20} {
		_, err := records.UpsertOnFirstExposure(ctx, userID, a.ID, asOf.Add(-time.Hour))
		require.NoError(t, err)
	}
	_, err := records.UpsertOnFirstExposure(ctx, 10, b.ID, asOf.Add(-time.Hour))
	require.NoError(t, err)
	// Not yet due for user 30.
	_, err = records.UpsertOnFirstExposure(ctx, 30, b.ID, asOf.Add(time.Hour))
	require.NoError(t, err)

	users, err := records.ListUsersWithDue(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, review.UserDueCount{UserID: 10, Count: 2}, users[0])
	assert.Equal(t, review.UserDueCount{UserID: 20, Count: 1}, users[1])
}

func TestReviewLogRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	logs := NewReviewLogRepository(db)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, q := range []int{5, 3} {
		entry := &models.ReviewLog{
			UserID:     1,
			WordID:     int64(i + 1),
			Quality:    q,
			ReviewedAt: start.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, logs.AppendLog(ctx, entry))
		assert.NotZero(t, entry.ID)
	}
	require.NoError(t, logs.AppendLog(ctx, &models.ReviewLog{
		UserID: 1, WordID: 3, Quality: 1, ReviewedAt: start.Add(-time.Hour),
	}))

	stats, err := logs.SessionStats(ctx, 1, start)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReviewed)
	assert.InDelta(t, 4.0, stats.AverageQuality, 1e-9)

	empty, err := logs.SessionStats(ctx, 2, start)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalReviewed)
}

func TestRepositoriesSatisfyStoreContracts(t *testing.T) {
	db := testDB(t)
	var _ review.WordStore = NewWordRepository(db)
	var _ review.LearningStore = NewLearningRecordRepository(db)
	var _ review.ReviewLogStore = NewReviewLogRepository(db)
}
