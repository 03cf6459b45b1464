package services

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// JournalMetrics receives journal events.
type JournalMetrics interface {
	RecordEntryCreated(mood models.Mood)
	RecordAIReply(ok bool)
}

// DefaultStoreTimeout bounds each store round trip made by Create.
const DefaultStoreTimeout = 5 * time.Second

// JournalService writes entries and derives streak and mood data from them.
type JournalService struct {
	store      EntryStore
	responder  Responder
	metrics    JournalMetrics
	logger     *zap.Logger
	maxEntries int
	timeout    time.Duration
	now        func() time.Time
}

// JournalOption configures a JournalService.
type JournalOption func(*JournalService)

// WithResponder attaches the AI collaborator. Without one, entries are saved
// with no reply.
func WithResponder(r Responder) JournalOption {
	return func(s *JournalService) { s.responder = r }
}

func WithMetrics(m JournalMetrics) JournalOption {
	return func(s *JournalService) { s.metrics = m }
}

// WithMaxEntries caps entries per user. Zero means unlimited.
func WithMaxEntries(n int) JournalOption {
	return func(s *JournalService) { s.maxEntries = n }
}

// WithStoreTimeout bounds the count and insert made by Create. The AI reply
// keeps its own deadline.
func WithStoreTimeout(d time.Duration) JournalOption {
	return func(s *JournalService) { s.timeout = d }
}

// WithClock overrides the wall clock used for created_at and streak "today".
func WithClock(now func() time.Time) JournalOption {
	return func(s *JournalService) { s.now = now }
}

func NewJournalService(store EntryStore, logger *zap.Logger, opts ...JournalOption) *JournalService {
	s := &JournalService{
		store:   store,
		logger:  logger,
		timeout: DefaultStoreTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateResult is the saved entry plus what the caller should show with it.
type CreateResult struct {
	Entry         models.JournalEntry
	CrisisSupport bool
}

// Create validates and saves an entry for ownerID. The AI reply is fetched
// before the write; if it fails the entry is saved without one.
func (s *JournalService) Create(ctx context.Context, ownerID, thought string, mood models.Mood) (*CreateResult, error) {
	if err := utils.ValidateThought(thought); err != nil {
		return nil, err
	}
	if !mood.Known() {
		return nil, &utils.ValidationError{Field: "mood", Message: "Mood is not recognised"}
	}

	if s.maxEntries > 0 {
		countCtx, cancel := context.WithTimeout(ctx, s.timeout)
		n, err := s.store.CountByOwner(countCtx, ownerID)
		cancel()
		if err != nil {
			return nil, err
		}
		if n >= int64(s.maxEntries) {
			return nil, ErrEntryLimitReached
		}
	}

	entry := models.JournalEntry{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		Thought:   thought,
		Mood:      mood,
		CreatedAt: s.now().UTC(),
	}

	reply, err := s.Reply(ctx, thought)
	switch {
	case err == nil:
		entry.AIReply = reply
	case errors.Is(err, ErrNoResponder):
	default:
		s.logger.Warn("ai reply failed, saving entry without it",
			zap.String("user_id", ownerID), zap.Error(err))
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Create(writeCtx, &entry); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordEntryCreated(entry.Mood)
	}

	return &CreateResult{Entry: entry, CrisisSupport: DetectCrisis(thought)}, nil
}

// Reply asks the responder for a reply without saving anything.
func (s *JournalService) Reply(ctx context.Context, thought string) (string, error) {
	if s.responder == nil {
		return "", ErrNoResponder
	}
	reply, err := s.responder.Respond(ctx, thought)
	if s.metrics != nil {
		s.metrics.RecordAIReply(err == nil)
	}
	return reply, err
}

// List returns the owner's entries, newest first.
func (s *JournalService) List(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	return s.store.ListByOwner(ctx, ownerID, NewestFirst)
}

// Streak summarises the owner's journaling days as of now.
func (s *JournalService) Streak(ctx context.Context, ownerID string) (StreakSummary, error) {
	entries, err := s.store.ListByOwner(ctx, ownerID, NewestFirst)
	if err != nil {
		return StreakSummary{}, err
	}
	return ComputeStreak(entries, s.now()), nil
}

// MoodSeries returns the owner's chronological mood series.
func (s *JournalService) MoodSeries(ctx context.Context, ownerID string) (iter.Seq[MoodSeriesPoint], error) {
	entries, err := s.store.ListByOwner(ctx, ownerID, OldestFirst)
	if err != nil {
		return nil, err
	}
	return ComputeMoodSeries(entries), nil
}
