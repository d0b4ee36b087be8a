//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := Open(ctx, Options{Driver: DriverMongo, URL: uri, Database: "hospital"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	require.NoError(t, s.Ping(ctx))

	coll := s.Collection("patients")
	id, err := coll.InsertOne(ctx, bson.M{"name": "John Doe", "age": 30})
	require.NoError(t, err)
	_, err = primitive.ObjectIDFromHex(id)
	require.NoError(t, err)

	docs, err := coll.FindAll(ctx, 100)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var got struct {
		ID   string `bson:"_id"`
		Name string `bson:"name"`
		Age  int    `bson:"age"`
	}
	require.NoError(t, bson.Unmarshal(docs[0], &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, 30, got.Age)
}
