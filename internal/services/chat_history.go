package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/models"
)

const chatCollection = "admin_chat_messages"

// EnsureChatIndexes configures indexes for the assistant chat history.
// Called on startup from main after Mongo has connected.
func EnsureChatIndexes(ctx context.Context) error {
	col := database.DB.Collection(chatCollection)

	// Compound index on (admin_id, timestamp) to support pagination.
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "admin_id", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("idx_admin_timestamp"),
	}

	_, err := col.Indexes().CreateOne(ctx, model)
	return err
}

// SaveChatTurnAsync persists an assistant chat turn asynchronously.
// Fire-and-forget: a lost history entry never blocks or fails a reply.
func SaveChatTurnAsync(adminID string, turn models.ChatTurn) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		record := models.ChatRecord{
			AdminID:   adminID,
			Role:      turn.Role,
			Content:   turn.Content,
			Timestamp: time.Now().UTC(),
		}
		_, _ = database.DB.Collection(chatCollection).InsertOne(ctx, record)
	}()
}

// LoadChatHistory returns paginated assistant chat history for an admin,
// oldest-first, newest page first when paginating with before.
func LoadChatHistory(ctx context.Context, adminID string, before *time.Time, limit int64) ([]models.ChatRecord, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(chatCollection)

	filter := bson.M{"admin_id": adminID}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var records []models.ChatRecord
	for cur.Next(ctx) {
		var rec models.ChatRecord
		if err := cur.Decode(&rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(records)) > limit
	if hasMore {
		records = records[:len(records)-1]
	}

	// Reverse to oldest-first for display.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, hasMore, nil
}
