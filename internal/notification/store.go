package notification

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "notifications"

// Notification is the document appended for a provider when a booking is
// made. Reading and marking notifications happens elsewhere; this store only
// creates them.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	User      int64              `bson:"user"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		coll: client.Database(database).Collection(collectionName),
	}
}

func (s *MongoStore) Notify(ctx context.Context, userID int64, content string) error {
	now := time.Now()

	doc := Notification{
		Content:   content,
		User:      userID,
		Read:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}
