package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Aivatar/backend/go/internal/models"
)

const conversationCollection = "conversations"

// ConversationStore keeps chat history in MongoDB, one document per turn.
type ConversationStore struct {
	coll *mongo.Collection
}

func NewConversationStore(client *mongo.Client, database string) *ConversationStore {
	return &ConversationStore{coll: client.Database(database).Collection(conversationCollection)}
}

// History returns the turns between a caller and an agent, oldest first.
// A limit of 0 means no limit.
func (s *ConversationStore) History(ctx context.Context, agentID, callerID uint, limit int64) ([]models.ConversationTurn, error) {
	filter := bson.M{"agent_id": agentID, "caller_id": callerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []models.ConversationTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// Append persists one or more turns of a finished exchange.
func (s *ConversationStore) Append(ctx context.Context, turns ...*models.ConversationTurn) error {
	docs := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		if turn.ID == "" {
			turn.ID = uuid.NewString()
		}
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = time.Now().UTC()
		}
		docs = append(docs, turn)
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}
