package db

import (
	"context"
	"errors"
	"fmt"

	"foodshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidID is returned for identifiers that are not 24-char hex object ids.
	ErrInvalidID   = errors.New("invalid document id")
	ErrUnavailable = errors.New("document store unavailable")
)

// Filter matches documents whose top-level fields equal the given values.
// An empty filter matches every document.
type Filter map[string]any

// Collection is the set of operations the handlers need from one collection.
// A missing document is not an error: FindByID returns (nil, nil) and
// DeleteByID reports zero deletions.
type Collection interface {
	Find(ctx context.Context, filter Filter) ([]models.Document, error)
	EstimatedCount(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id string) (models.Document, error)
	Insert(ctx context.Context, doc models.Document) (*models.InsertResult, error)
	// UpsertByID sets fields on the document, creating it under id when absent.
	UpsertByID(ctx context.Context, id string, fields models.Document) (*models.UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (*models.DeleteResult, error)
}

//go:generate mockgen -source=./store.go -destination=../../mocks/store.go -package=mocks

// Store owns the connection shared by every request.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// parseID validates id the same way for every driver.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
