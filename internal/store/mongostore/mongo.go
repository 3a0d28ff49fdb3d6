// Package mongostore keeps the ledger in MongoDB so several devices can
// share one pot.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cleared-dev/bote/internal/logger"
	"github.com/cleared-dev/bote/internal/store"
)

// Collection names.
const (
	TransactionsCollection = "transactions"
	MembersCollection      = "members"
)

// DefaultDatabase is used when the config names none.
const DefaultDatabase = "bote"

// Collection is the subset of *mongo.Collection the store needs.
type Collection interface {
	FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// CollectionProvider hands out collections by name.
type CollectionProvider interface {
	Collection(name string) Collection
}

// MongoCollection adapts *mongo.Collection to Collection.
type MongoCollection struct {
	*mongo.Collection
}

// FindAll runs a query and decodes every document.
func (c *MongoCollection) FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	cur, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.Name(), err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.Name(), err)
	}
	return docs, nil
}

// MongoProvider adapts a client and database name to CollectionProvider.
type MongoProvider struct {
	client   *mongo.Client
	database string
}

// NewMongoProvider creates a MongoProvider.
func NewMongoProvider(client *mongo.Client, database string) *MongoProvider {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoProvider{client: client, database: database}
}

// Collection returns the named collection.
func (p *MongoProvider) Collection(name string) Collection {
	return &MongoCollection{p.client.Database(p.database).Collection(name)}
}

// Connect dials uri, checks the connection and returns a ready Store.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	log := logger.FromContext(ctx)
	log.Debug().Str("database", database).Msg("connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w: %w", store.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w: %w", store.ErrUnavailable, err)
	}

	log.Info().Msg("connected to MongoDB")
	s := New(NewMongoProvider(client, database), opts...)
	s.disconnect = client.Disconnect
	return s, nil
}
