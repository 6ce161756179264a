package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Local calls a store in-process, for when no remote service is configured.
type Local struct {
	Store store.Store
}

var _ Gateway = Local{}

func (l Local) List(ctx context.Context) ([]model.Item, error) {
	items, err := l.Store.List(ctx)
	if err != nil {
		return nil, classify("list", err)
	}
	return items, nil
}

func (l Local) Create(ctx context.Context, text string) (model.Item, error) {
	it, err := l.Store.Create(ctx, text)
	if err != nil {
		return model.Item{}, classify("create", err)
	}
	return it, nil
}

func (l Local) ToggleCompletion(ctx context.Context, id int64) error {
	if err := l.Store.Toggle(ctx, id); err != nil {
		return classify("toggle", err)
	}
	return nil
}

func (l Local) Delete(ctx context.Context, id int64) error {
	if err := l.Store.Delete(ctx, id); err != nil {
		return classify("delete", err)
	}
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
}
