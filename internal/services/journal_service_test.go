package services

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []models.JournalEntry
	err     error
}

func (m *memoryStore) Create(ctx context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryStore) ListByOwner(ctx context.Context, ownerID string, order SortOrder) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.JournalEntry
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	entries, err := m.ListByOwner(ctx, ownerID, NewestFirst)
	return int64(len(entries)), err
}

type stubResponder struct {
	reply string
	err   error
	calls int
}

func (r *stubResponder) Respond(ctx context.Context, thought string) (string, error) {
	r.calls++
	return r.reply, r.err
}

type countingMetrics struct {
	created map[models.Mood]int
	aiOK    int
	aiFail  int
}

func (c *countingMetrics) RecordEntryCreated(mood models.Mood) {
	if c.created == nil {
		c.created = map[models.Mood]int{}
	}
	c.created[mood]++
}

func (c *countingMetrics) RecordAIReply(ok bool) {
	if ok {
		c.aiOK++
	} else {
		c.aiFail++
	}
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestJournalService_Create(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("saves entry with ai reply", func(t *testing.T) {
		store := &memoryStore{}
		ai := &stubResponder{reply: "Take a deep breath."}
		m := &countingMetrics{}
		svc := NewJournalService(store, zap.NewNop(), WithResponder(ai), WithMetrics(m), WithClock(fixedClock(now)))

		res, err := svc.Create(context.Background(), "u1", "Long day", models.MoodAnxious)
		require.NoError(t, err)
		assert.Equal(t, "Take a deep breath.", res.Entry.AIReply)
		assert.Equal(t, now, res.Entry.CreatedAt)
		assert.False(t, res.CrisisSupport)
		require.Len(t, store.entries, 1)
		assert.Equal(t, "u1", store.entries[0].OwnerID)
		assert.Equal(t, 1, m.created[models.MoodAnxious])
		assert.Equal(t, 1, m.aiOK)
	})

	t.Run("ai failure still saves entry", func(t *testing.T) {
		store := &memoryStore{}
		m := &countingMetrics{}
		svc := NewJournalService(store, zap.NewNop(),
			WithResponder(&stubResponder{err: errors.New("upstream down")}), WithMetrics(m))

		res, err := svc.Create(context.Background(), "u1", "Still here", models.MoodCalm)
		require.NoError(t, err)
		assert.Empty(t, res.Entry.AIReply)
		assert.Len(t, store.entries, 1)
		assert.Equal(t, 1, m.aiFail)
	})

	t.Run("no responder configured", func(t *testing.T) {
		store := &memoryStore{}
		svc := NewJournalService(store, zap.NewNop())
		res, err := svc.Create(context.Background(), "u1", "quiet evening", models.MoodNeutral)
		require.NoError(t, err)
		assert.Empty(t, res.Entry.AIReply)
	})

	t.Run("rejects blank thought and unknown mood", func(t *testing.T) {
		svc := NewJournalService(&memoryStore{}, zap.NewNop())
		var verr *utils.ValidationError

		_, err := svc.Create(context.Background(), "u1", "   ", models.MoodHappy)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "thought", verr.Field)

		_, err = svc.Create(context.Background(), "u1", "hello", models.Mood("Elated"))
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "mood", verr.Field)
	})

	t.Run("enforces entry cap per owner", func(t *testing.T) {
		store := &memoryStore{}
		svc := NewJournalService(store, zap.NewNop(), WithMaxEntries(2))
		ctx := context.Background()

		_, err := svc.Create(ctx, "u1", "one", models.MoodHappy)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "u1", "two", models.MoodHappy)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "u1", "three", models.MoodHappy)
		assert.ErrorIs(t, err, ErrEntryLimitReached)

		_, err = svc.Create(ctx, "u2", "other user", models.MoodHappy)
		assert.NoError(t, err)
	})

	t.Run("flags crisis language", func(t *testing.T) {
		svc := NewJournalService(&memoryStore{}, zap.NewNop())
		res, err := svc.Create(context.Background(), "u1", "I want to die", models.MoodSad)
		require.NoError(t, err)
		assert.True(t, res.CrisisSupport)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		svc := NewJournalService(&memoryStore{err: errors.New("mongo down")}, zap.NewNop())
		_, err := svc.Create(context.Background(), "u1", "hi", models.MoodHappy)
		assert.Error(t, err)
	})
}

// deadlineStore records how much time each store call was given.
type deadlineStore struct {
	memoryStore
	countBudget  time.Duration
	createBudget time.Duration
}

func budget(ctx context.Context) time.Duration {
	d, ok := ctx.Deadline()
	if !ok {
		return -1
	}
	return time.Until(d)
}

func (d *deadlineStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	d.countBudget = budget(ctx)
	return d.memoryStore.CountByOwner(ctx, ownerID)
}

func (d *deadlineStore) Create(ctx context.Context, e *models.JournalEntry) error {
	d.createBudget = budget(ctx)
	return d.memoryStore.Create(ctx, e)
}

func TestJournalService_CreateBoundsStoreCalls(t *testing.T) {
	store := &deadlineStore{}
	svc := NewJournalService(store, zap.NewNop(), WithMaxEntries(10), WithStoreTimeout(2*time.Second))

	_, err := svc.Create(context.Background(), "u1", "quiet evening", models.MoodCalm)
	require.NoError(t, err)

	assert.Greater(t, store.countBudget, time.Duration(0))
	assert.LessOrEqual(t, store.countBudget, 2*time.Second)
	assert.Greater(t, store.createBudget, time.Duration(0))
	assert.LessOrEqual(t, store.createBudget, 2*time.Second)

	store = &deadlineStore{}
	_, err = NewJournalService(store, zap.NewNop()).Create(context.Background(), "u1", "hi", models.MoodHappy)
	require.NoError(t, err)
	assert.Greater(t, store.createBudget, DefaultStoreTimeout-time.Second)
	assert.LessOrEqual(t, store.createBudget, DefaultStoreTimeout)
}

func TestJournalService_StreakAndSeries(t *testing.T) {
	now := time.Date(2025, 1, 2, 21, 0, 0, 0, time.UTC)
	store := &memoryStore{entries: []models.JournalEntry{
		{OwnerID: "u1", Mood: models.MoodAnxious, Thought: "c", CreatedAt: time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC)},
		{OwnerID: "u1", Mood: models.MoodHappy, Thought: "a", CreatedAt: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)},
		{OwnerID: "u1", Mood: models.MoodSad, Thought: "b", CreatedAt: time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC)},
		{OwnerID: "u2", Mood: models.MoodCalm, Thought: "x", CreatedAt: time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC)},
	}}
	svc := NewJournalService(store, zap.NewNop(), WithClock(fixedClock(now)))
	ctx := context.Background()

	summary, err := svc.Streak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StreakSummary{TotalDistinctDays: 2, CurrentStreak: 2}, summary)

	seq, err := svc.MoodSeries(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 1, 2}, scores(slices.Collect(seq)))

	summary, err = svc.Streak(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, StreakSummary{}, summary)

	store.err = errors.New("unavailable")
	_, err = svc.Streak(ctx, "u1")
	assert.Error(t, err)
	_, err = svc.MoodSeries(ctx, "u1")
	assert.Error(t, err)
}

func TestWriteJournalText(t *testing.T) {
	entries := []models.JournalEntry{
		{Mood: models.MoodSad, Thought: "Rainy", CreatedAt: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)},
		{Mood: models.MoodHappy, Thought: "Sunny", AIReply: "Lovely!", CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJournalText(&buf, ComputeMoodSeries(entries)))

	want := "\nDate: 2025-01-01\nMood: Happy\nThought: Sunny\nAI Feedback: Lovely!\n------------------------------" +
		"\n\n" +
		"\nDate: 2025-01-02\nMood: Sad\nThought: Rainy\nAI Feedback: N/A\n------------------------------"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "My_Journal.txt", ExportFilename(ExportText))
}

func TestWriteJournalText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJournalText(&buf, ComputeMoodSeries(nil)))
	assert.Empty(t, buf.String())
}
