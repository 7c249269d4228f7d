package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ruslan-korneev/lingooru-sub001/internal/sm2"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

type pairKey struct {
	userID int64
	wordID int64
}

// MemoryStore is an in-process implementation of LearningStore, WordStore
// and ReviewLogStore with the same optimistic-concurrency semantics as the
// relational store. It backs tests and keeps the scheduler runnable without
// a database.
type MemoryStore struct {
	mu      sync.RWMutex
	wordSeq int64
	logSeq  int64
	words   map[int64]models.Word
	byText  map[string]int64
	records map[pairKey]models.LearningRecord
	logs    []models.ReviewLog
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		words:   make(map[int64]models.Word),
		byText:  make(map[string]int64),
		records: make(map[pairKey]models.LearningRecord),
	}
}

func textKey(text string, language models.Language) string {
	return text + "\x00" + string(language)
}

// GetWord implements WordStore.
func (m *MemoryStore) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.words[id]
	if !ok {
		return nil, ErrWordNotFound
	}
	return &w, nil
}

// FindWord implements WordStore.
func (m *MemoryStore) FindWord(ctx context.Context, text string, language models.Language) (*models.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byText[textKey(text, language)]
	if !ok {
		return nil, ErrWordNotFound
	}
	w := m.words[id]
	return &w, nil
}

// CreateWord implements WordStore.
func (m *MemoryStore) CreateWord(ctx context.Context, w *models.Word) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := textKey(w.Text, w.Language)
	if _, ok := m.byText[key]; ok {
		return ErrConflict
	}
	m.wordSeq++
	w.ID = m.wordSeq
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	m.words[w.ID] = *w
	m.byText[key] = w.ID
	return nil
}

// Get implements LearningStore.
func (m *MemoryStore) Get(ctx context.Context, userID, wordID int64) (*models.LearningRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[pairKey{userID, wordID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// UpsertOnFirstExposure implements LearningStore.
func (m *MemoryStore) UpsertOnFirstExposure(ctx context.Context, userID, wordID int64, now time.Time) (*models.LearningRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, wordID}
	if rec, ok := m.records[key]; ok {
		return &rec, nil
	}
	rec := models.LearningRecord{
		UserID:   userID,
		WordID:   wordID,
		Easiness: sm2.DefaultEasiness,
		DueAt:    now,
		AddedAt:  now,
		Version:  1,
	}
	m.records[key] = rec
	return &rec, nil
}

// ApplyUpdate implements LearningStore.
func (m *MemoryStore) ApplyUpdate(ctx context.Context, rec *models.LearningRecord, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{rec.UserID, rec.WordID}
	current, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrConflict
	}
	rec.Version = expectedVersion + 1
	m.records[key] = *rec
	return nil
}

// ListDue implements LearningStore.
func (m *MemoryStore) ListDue(ctx context.Context, userID int64, asOf time.Time, limit int) ([]models.DueWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []models.DueWord
	for _, rec := range m.records {
		if rec.UserID != userID || rec.IsLearned || rec.DueAt.After(asOf) {
			continue
		}
		word, ok := m.words[rec.WordID]
		if !ok {
			continue
		}
		due = append(due, models.DueWord{Word: word, Record: rec})
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].Record, due[j].Record
		if !a.DueAt.Equal(b.DueAt) {
			return a.DueAt.Before(b.DueAt)
		}
		return a.AddedAt.Before(b.AddedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// CountDue implements LearningStore.
func (m *MemoryStore) CountDue(ctx context.Context, userID int64, asOf time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rec := range m.records {
		if rec.UserID == userID && !rec.IsLearned && !rec.DueAt.After(asOf) {
			count++
		}
	}
	return count, nil
}

// ListUsersWithDue implements LearningStore.
func (m *MemoryStore) ListUsersWithDue(ctx context.Context, asOf time.Time) ([]UserDueCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[int64]int)
	for _, rec := range m.records {
		if !rec.IsLearned && !rec.DueAt.After(asOf) {
			counts[rec.UserID]++
		}
	}
	out := make([]UserDueCount, 0, len(counts))
	for userID, count := range counts {
		out = append(out, UserDueCount{UserID: userID, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// AppendLog implements ReviewLogStore.
func (m *MemoryStore) AppendLog(ctx context.Context, entry *models.ReviewLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logSeq++
	entry.ID = m.logSeq
	m.logs = append(m.logs, *entry)
	return nil
}

// SessionStats implements ReviewLogStore.
func (m *MemoryStore) SessionStats(ctx context.Context, userID int64, since time.Time) (models.SessionStats, error) {
	if err := ctx.Err(); err != nil {
		return models.SessionStats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total, sum int
	for _, l := range m.logs {
		if l.UserID == userID && !l.ReviewedAt.Before(since) {
			total++
			sum += l.Quality
		}
	}
	stats := models.SessionStats{TotalReviewed: total}
	if total > 0 {
		stats.AverageQuality = float64(sum) / float64(total)
	}
	return stats, nil
}
