// Package store defines the storage contract behind the persistence service.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/tada/internal/model"
)

// ErrNotFound is returned when an operation names an unknown id.
var ErrNotFound = errors.New("item not found")

// Store is the persistence service's backend. Implementations assign ids
// and must never hand out an id twice, even after deletion.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, text string) (model.Item, error)
	Toggle(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	// Replace overwrites the whole collection, keeping the given ids.
	Replace(ctx context.Context, items []model.Item) error
	Close() error
}
