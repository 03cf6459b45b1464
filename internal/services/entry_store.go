package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

const journalsCollection = "journals"

// SortOrder selects the created_at ordering of a listing.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

// EntryStore persists journal entries. Every query is scoped to one owner.
type EntryStore interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	ListByOwner(ctx context.Context, ownerID string, order SortOrder) ([]models.JournalEntry, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// FieldSealer encrypts text fields at rest.
type FieldSealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// MongoEntryStore keeps one document per entry in the journals collection.
type MongoEntryStore struct {
	col    *mongo.Collection
	sealer FieldSealer
}

// NewMongoEntryStore returns a store over db. sealer may be nil, in which case
// entries are stored in plain text.
func NewMongoEntryStore(db *mongo.Database, sealer FieldSealer) *MongoEntryStore {
	return &MongoEntryStore{col: db.Collection(journalsCollection), sealer: sealer}
}

// EnsureIndexes creates the (user_id, created_at) index used by every listing.
func (s *MongoEntryStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created_at"),
	})
	if err != nil {
		return fmt.Errorf("create journal index: %w", err)
	}
	return nil
}

func (s *MongoEntryStore) Create(ctx context.Context, entry *models.JournalEntry) error {
	doc := *entry
	if s.sealer != nil {
		var err error
		if doc.Thought, err = s.sealer.Encrypt(entry.Thought); err != nil {
			return fmt.Errorf("seal thought: %w", err)
		}
		if doc.AIReply, err = s.sealer.Encrypt(entry.AIReply); err != nil {
			return fmt.Errorf("seal ai reply: %w", err)
		}
		doc.Encrypted = true
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (s *MongoEntryStore) ListByOwner(ctx context.Context, ownerID string, order SortOrder) ([]models.JournalEntry, error) {
	direction := -1
	if order == OldestFirst {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: direction},
		{Key: "_id", Value: direction},
	})

	cur, err := s.col.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find journal entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := make([]models.JournalEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode journal entries: %w", err)
	}

	for i := range entries {
		if err := s.open(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *MongoEntryStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return n, nil
}

func (s *MongoEntryStore) open(e *models.JournalEntry) error {
	if !e.Encrypted {
		return nil
	}
	if s.sealer == nil {
		return fmt.Errorf("entry %s is encrypted but no key is configured", e.ID.Hex())
	}
	var err error
	if e.Thought, err = s.sealer.Decrypt(e.Thought); err != nil {
		return fmt.Errorf("open entry %s: %w", e.ID.Hex(), err)
	}
	if e.AIReply, err = s.sealer.Decrypt(e.AIReply); err != nil {
		return fmt.Errorf("open entry %s: %w", e.ID.Hex(), err)
	}
	e.Encrypted = false
	return nil
}
