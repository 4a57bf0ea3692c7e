package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stateCollection = "local_state"

// StateStore keeps the device's durable local state in MongoDB, one document
// per logical key.
type StateStore struct {
	coll *mongo.Collection
}

func NewStateStore(db *mongo.Database) *StateStore {
	return &StateStore{coll: db.Collection(stateCollection)}
}

type stateDoc struct {
	Key       string `bson:"_id"`
	Value     []byte `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc stateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state get %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Put replaces the whole document for key.
func (s *StateStore) Put(ctx context.Context, key string, value []byte) error {
	doc := stateDoc{Key: key, Value: value, UpdatedAt: time.Now().UTC().Unix()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("state put %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("state delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
