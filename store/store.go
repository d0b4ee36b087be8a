// Package store gives named-collection access to the configured record store.
//
// MongoDB is the primary backend. A gorm-backed relational backend (MySQL,
// PostgreSQL, or SQLite for tests and local runs) keeps the same document contract by storing
// each document as a BSON blob keyed by collection name.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	DriverMongo    = "mongodb"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrStoreUnavailable marks any failure talking to the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMalformedConfiguration marks an unusable connection URL, database name or driver.
	ErrMalformedConfiguration = errors.New("malformed store configuration")
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	URL      string
	Database string
}

// Collection is a handle to one named collection.
type Collection interface {
	// InsertOne stores doc and returns the identifier the store assigned, as text.
	InsertOne(ctx context.Context, doc interface{}) (string, error)
	// FindAll returns up to limit documents in the store's default order.
	FindAll(ctx context.Context, limit int64) ([]bson.Raw, error)
}

type backend interface {
	collection(name string) Collection
	ping(ctx context.Context) error
	close(ctx context.Context) error
}

// Store is the process-wide handle to the configured database.
type Store struct {
	driver  string
	backend backend
}

// Open initializes the backend named by opts.Driver. The MongoDB backend connects
// lazily, so an unreachable server is reported by the first operation, not here.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		b   backend
		err error
	)
	switch opts.Driver {
	case "", DriverMongo:
		opts.Driver = DriverMongo
		b, err = openMongo(ctx, opts.URL, opts.Database)
	case DriverMySQL, DriverPostgres, DriverSQLite:
		b, err = openGorm(opts.Driver, opts.URL)
	default:
		err = fmt.Errorf("%w: unknown driver %q", ErrMalformedConfiguration, opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &Store{driver: opts.Driver, backend: b}, nil
}

// Driver reports which backend is in use.
func (s *Store) Driver() string {
	return s.driver
}

// Collection returns a handle to the named collection. A collection that was
// never written reads as empty.
func (s *Store) Collection(name string) Collection {
	return s.backend.collection(name)
}

// Ping checks that the store answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.backend.ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	return s.backend.close(ctx)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
