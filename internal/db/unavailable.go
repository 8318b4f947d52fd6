package db

import (
	"context"
	"fmt"

	"foodshare/internal/models"
)

// unavailable stands in for a store whose driver could not be constructed,
// so the server can keep listening and fail each store call instead.
type unavailable struct {
	cause error
}

// Unavailable returns a Store whose every operation fails with ErrUnavailable.
func Unavailable(cause error) Store {
	return &unavailable{cause: cause}
}

func (u *unavailable) err() error {
	return fmt.Errorf("%w: %v", ErrUnavailable, u.cause)
}

func (u *unavailable) Collection(string) Collection { return u }

func (u *unavailable) Ping(context.Context) error { return u.err() }

func (u *unavailable) Close(context.Context) error { return nil }

func (u *unavailable) Find(context.Context, Filter) ([]models.Document, error) {
	return nil, u.err()
}

func (u *unavailable) EstimatedCount(context.Context) (int64, error) {
	return 0, u.err()
}

func (u *unavailable) FindByID(context.Context, string) (models.Document, error) {
	return nil, u.err()
}

func (u *unavailable) Insert(context.Context, models.Document) (*models.InsertResult, error) {
	return nil, u.err()
}

func (u *unavailable) UpsertByID(context.Context, string, models.Document) (*models.UpdateResult, error) {
	return nil, u.err()
}

func (u *unavailable) DeleteByID(context.Context, string) (*models.DeleteResult, error) {
	return nil, u.err()
}
