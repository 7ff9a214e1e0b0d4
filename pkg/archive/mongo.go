package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/signstudio/signstudio/pkg/template"
)

// MongoConfig holds connection settings for the Mongo backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoArchive stores documents in a MongoDB collection, one document per
// saved version.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoArchive connects to MongoDB and verifies the connection.
func NewMongoArchive(ctx context.Context, cfg MongoConfig) (*MongoArchive, error) {
	if cfg.Database == "" {
		cfg.Database = "signstudio"
	}
	if cfg.Collection == "" {
		cfg.Collection = "templates"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoArchive{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (a *MongoArchive) Save(ctx context.Context, templateID string, payload template.SavePayload) (*Document, error) {
	next := 1
	if latest, err := a.Latest(ctx, templateID); err == nil {
		next = latest.Version + 1
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	doc := &Document{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Name:       payload.Name,
		Version:    next,
		Payload:    payload,
		SavedAt:    time.Now().UTC(),
	}
	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

func (a *MongoArchive) Latest(ctx context.Context, templateID string) (*Document, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var doc Document
	err := a.coll.FindOne(ctx, bson.M{"template_id": templateID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func (a *MongoArchive) Versions(ctx context.Context, templateID string) ([]*Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}})
	cur, err := a.coll.Find(ctx, bson.M{"template_id": templateID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return out, nil
}

func (a *MongoArchive) Close() error {
	return a.client.Disconnect(context.Background())
}

var _ Archive = (*MongoArchive)(nil)
