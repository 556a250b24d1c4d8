package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatTurn is a single message in an assistant conversation, in the wire
// format the console and the upstream assistant service both speak.
type ChatTurn struct {
	Role    string `bson:"role" json:"role"` // "user" or "assistant"
	Content string `bson:"content" json:"content"`
}

// ChatRecord is a persisted assistant chat turn, keyed by the admin who
// had the conversation.
type ChatRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID   string             `bson:"admin_id" json:"admin_id"`
	Role      string             `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
