// Package gateway is the typed boundary to the persistence service.
//
// A Gateway owns no state and holds no cache. Every failure it reports
// wraps exactly one of ErrTransport or ErrNotFound, so callers can tell
// "the service returned nothing" (nil error) from "the call failed".
package gateway

import (
	"context"
	"errors"

	"github.com/idilsaglam/tada/internal/model"
)

var (
	// ErrTransport means the call did not complete: the service was
	// unreachable, answered with an unexpected status, or failed internally.
	ErrTransport = errors.New("transport failure")

	// ErrNotFound means the service does not know the id.
	ErrNotFound = errors.New("not found")
)

// Gateway exposes the four remote operations of the persistence service.
type Gateway interface {
	// List fetches the whole collection in the service's order.
	List(ctx context.Context) ([]model.Item, error)
	// Create asks the service to allocate a new, not completed item.
	Create(ctx context.Context, text string) (model.Item, error)
	// ToggleCompletion flips the completed flag. It does not report the new value.
	ToggleCompletion(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
