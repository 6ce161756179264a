package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/idilsaglam/tada/internal/gateway"
	"github.com/idilsaglam/tada/internal/model"
)

// fakeGateway is an in-memory service with failure injection.
type fakeGateway struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int64

	failList, failCreate, failToggle, failDelete bool

	// before runs at the start of every call, outside mu; tests use it
	// to block a call until they release it.
	before func(op string, id int64)
	// afterList runs once List has taken its snapshot, outside mu, so a
	// test can apply changes the returned list does not reflect.
	afterList func()

	calls map[string]int
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func newFake(items ...model.Item) *fakeGateway {
	f := &fakeGateway{nextID: 1, calls: make(map[string]int)}
	for _, it := range items {
		f.items = append(f.items, it)
		if it.ID >= f.nextID {
			f.nextID = it.ID + 1
		}
	}
	return f
}

// enter records the call, runs the hook and fails like a transport would
// if ctx was cancelled meanwhile.
func (f *fakeGateway) enter(ctx context.Context, op string, id int64) error {
	f.mu.Lock()
	f.calls[op]++
	hook := f.before
	f.mu.Unlock()
	if hook != nil {
		hook(op, id)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrTransport, err)
	}
	return nil
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) List(ctx context.Context) ([]model.Item, error) {
	if err := f.enter(ctx, "list", 0); err != nil {
		return nil, err
	}
	f.mu.Lock()
	if f.failList {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: injected", gateway.ErrTransport)
	}
	items := append([]model.Item{}, f.items...)
	hook := f.afterList
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return items, nil
}

func (f *fakeGateway) Create(ctx context.Context, text string) (model.Item, error) {
	if err := f.enter(ctx, "create", 0); err != nil {
		return model.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return model.Item{}, fmt.Errorf("%w: injected", gateway.ErrTransport)
	}
	it := model.Item{ID: f.nextID, Text: text}
	f.nextID++
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeGateway) ToggleCompletion(ctx context.Context, id int64) error {
	if err := f.enter(ctx, "toggle", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failToggle {
		return fmt.Errorf("%w: injected", gateway.ErrTransport)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Completed = !f.items[i].Completed
			return nil
		}
	}
	return fmt.Errorf("%w: %d", gateway.ErrNotFound, id)
}

func (f *fakeGateway) Delete(ctx context.Context, id int64) error {
	if err := f.enter(ctx, "delete", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("%w: injected", gateway.ErrTransport)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", gateway.ErrNotFound, id)
}

func (f *fakeGateway) set(fn func(f *fakeGateway)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}
