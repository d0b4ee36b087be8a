package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// documentRow holds one document of one collection.
type documentRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Collection string    `gorm:"size:64;not null;index:idx_documents_collection_created,priority:1"`
	Body       []byte    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index:idx_documents_collection_created,priority:2"`
}

func (documentRow) TableName() string {
	return "documents"
}

type gormBackend struct {
	db *gorm.DB
}

func openGorm(driver, dsn string) (*gormBackend, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty %s dsn", ErrMalformedConfiguration, driver)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		// Skip the version query so an unreachable server is reported by the table bootstrap.
		dialector = mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true})
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfiguration, err)
	}
	return newGormBackend(db)
}

// newGormBackend wraps an already opened connection and makes sure the documents table exists.
func newGormBackend(db *gorm.DB) (*gormBackend, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, unavailable("create documents table", err)
	}
	return &gormBackend{db: db}, nil
}

// NewGormStore wraps an already opened gorm connection in a Store.
func NewGormStore(db *gorm.DB) (*Store, error) {
	b, err := newGormBackend(db)
	if err != nil {
		return nil, err
	}
	return &Store{driver: db.Dialector.Name(), backend: b}, nil
}

func (b *gormBackend) collection(name string) Collection {
	return &gormCollection{db: b.db, name: name}
}

func (b *gormBackend) ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *gormBackend) close(context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormCollection struct {
	db   *gorm.DB
	name string
}

func (c *gormCollection) InsertOne(ctx context.Context, doc interface{}) (string, error) {
	id := uuid.NewString()
	body, err := withID(doc, id)
	if err != nil {
		return "", fmt.Errorf("encode document for %s: %w", c.name, err)
	}

	row := documentRow{ID: id, Collection: c.name, Body: body}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", unavailable("insert into "+c.name, err)
	}
	return id, nil
}

func (c *gormCollection) FindAll(ctx context.Context, limit int64) ([]bson.Raw, error) {
	var rows []documentRow
	query := c.db.WithContext(ctx).
		Where("collection = ?", c.name).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(int(limit))
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, unavailable("find in "+c.name, err)
	}

	docs := make([]bson.Raw, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, bson.Raw(r.Body))
	}
	return docs, nil
}

// withID encodes doc as BSON with _id set to id as its first element.
// Any _id already present in doc is replaced.
func withID(doc interface{}, id string) ([]byte, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	out := make(bson.D, 0, len(fields)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	for _, f := range fields {
		if f.Key == "_id" {
			continue
		}
		out = append(out, f)
	}
	return bson.Marshal(out)
}
