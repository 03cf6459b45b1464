package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalEntry is one journal submission. Entries are written once, with the
// AI reply attached at creation time, and never updated afterwards.
type JournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"user_id" json:"user_id"`
	Thought   string             `bson:"thought" json:"thought"`
	Mood      Mood               `bson:"mood" json:"mood"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	AIReply   string             `bson:"ai_reply,omitempty" json:"aiReply,omitempty"`

	// Set when thought and ai_reply are stored sealed with the encryption key
	Encrypted bool `bson:"encrypted,omitempty" json:"-"`
}
