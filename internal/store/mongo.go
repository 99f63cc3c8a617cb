package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// MongoStore keeps each collection as one document in the "documents"
// collection, keyed by name. Questions are stored as their JSON wire form
// so every backend shares one encoding.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Repo = (*MongoStore)(nil)

type mongoDoc struct {
	ID   string `bson:"_id"`
	Data string `bson:"data"`
}

// OpenMongo connects to uri and uses database db.
func OpenMongo(ctx context.Context, uri, db string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if db == "" {
		db = "ipquiz"
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(db).Collection("documents"),
	}, nil
}

func (m *MongoStore) get(ctx context.Context, id string) (string, error) {
	var doc mongoDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find %s: %w", id, err)
	}
	return doc.Data, nil
}

func (m *MongoStore) put(ctx context.Context, id, data string) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": id},
		mongoDoc{ID: id, Data: data},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace %s: %w", id, err)
	}
	return nil
}

func (m *MongoStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	data, err := m.get(ctx, "questions")
	if err != nil {
		return nil, err
	}
	bank := quiz.Bank{}
	if err := json.Unmarshal([]byte(data), &bank); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return bank, nil
}

func (m *MongoStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	if bank == nil {
		bank = quiz.Bank{}
	}
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return m.put(ctx, "questions", string(data))
}

func (m *MongoStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	data, err := m.get(ctx, "hints")
	if err != nil {
		return nil, err
	}
	hints := quiz.HintMap{}
	if err := json.Unmarshal([]byte(data), &hints); err != nil {
		return nil, fmt.Errorf("decode hints: %w", err)
	}
	return hints, nil
}

func (m *MongoStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	if hints == nil {
		hints = quiz.HintMap{}
	}
	data, err := json.Marshal(hints)
	if err != nil {
		return fmt.Errorf("encode hints: %w", err)
	}
	return m.put(ctx, "hints", string(data))
}

func (m *MongoStore) LoadPINHash(ctx context.Context) (string, error) {
	return m.get(ctx, "pin")
}

func (m *MongoStore) SavePINHash(ctx context.Context, hash string) error {
	return m.put(ctx, "pin", hash)
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
