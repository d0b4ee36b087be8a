package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

func openMongo(ctx context.Context, uri, dbName string) (*mongoBackend, error) {
	if strings.TrimSpace(dbName) == "" {
		return nil, fmt.Errorf("%w: empty database name", ErrMalformedConfiguration)
	}

	clientOptions := options.Client().ApplyURI(uri)
	if err := clientOptions.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfiguration, err)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfiguration, err)
	}

	return &mongoBackend{client: client, db: client.Database(dbName)}, nil
}

func (b *mongoBackend) collection(name string) Collection {
	return &mongoCollection{coll: b.db.Collection(name)}
}

func (b *mongoBackend) ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *mongoBackend) close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc interface{}) (string, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", unavailable("insert into "+c.coll.Name(), err)
	}
	return idString(res.InsertedID), nil
}

func (c *mongoCollection) FindAll(ctx context.Context, limit int64) ([]bson.Raw, error) {
	cursor, err := c.coll.Find(ctx, bson.D{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, unavailable("find in "+c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]bson.Raw, 0)
	for cursor.Next(ctx) {
		// cursor.Current is reused by the next call to Next.
		docs = append(docs, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return nil, unavailable("read cursor of "+c.coll.Name(), err)
	}
	return docs, nil
}

func idString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
