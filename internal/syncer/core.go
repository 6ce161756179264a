package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/idilsaglam/tada/internal/gateway"
	"github.com/idilsaglam/tada/internal/model"
)

// Failure kinds reported by Core operations. Use errors.Is.
var (
	ErrTransport = gateway.ErrTransport
	ErrNotFound  = gateway.ErrNotFound
	ErrEmptyText = model.ErrEmptyText
	// ErrStale reports a list call that kept racing local mutations; the
	// list was left as it was.
	ErrStale = errors.New("list changed while listing")
)

// staleRetries bounds how often a load lists again after its snapshot was
// overtaken by a local mutation.
const staleRetries = 2

// Core holds the canonical list. Build one with New.
type Core struct {
	gw       gateway.Gateway
	logger   *slog.Logger
	onChange func()

	mu      sync.Mutex
	items   []model.Item
	pending map[int64]bool
	// gen increases on every wholesale replacement of the list.
	gen uint64
	// seq increases on every local mutation applied outside a load.
	seq uint64

	ids idLocks
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger for operation outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnChange registers fn to run after every local mutation, including
// an optimistic flip and its rollback. fn runs without the list lock held
// and should re-read the list through Items.
func WithOnChange(fn func()) Option {
	return func(c *Core) { c.onChange = fn }
}

// New returns a Core with an empty list.
func New(gw gateway.Gateway, opts ...Option) *Core {
	c := &Core{
		gw:      gw,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		items:   []model.Item{},
		pending: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Items returns a copy of the list in display order.
func (c *Core) Items() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Item(nil), c.items...)
}

// Get returns the item with id.
func (c *Core) Get(id int64) (model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	return model.Item{}, false
}

// Pending reports whether a toggle for id is awaiting its outcome.
func (c *Core) Pending(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

// Stats counts done and pending items in the current list.
func (c *Core) Stats() (done, pending int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Stats(c.items)
}

// InitialLoad populates the list from the service. On failure the list is
// reset to its initial empty state.
func (c *Core) InitialLoad(ctx context.Context) error {
	return c.load(ctx, "initial load", true)
}

// Refresh replaces the list with the service's current state. On failure
// the current list is kept.
func (c *Core) Refresh(ctx context.Context) error {
	return c.load(ctx, "refresh", false)
}

func (c *Core) load(ctx context.Context, op string, resetOnFailure bool) error {
	for attempt := 0; ; attempt++ {
		c.mu.Lock()
		seq := c.seq
		c.mu.Unlock()

		items, err := c.gw.List(context.WithoutCancel(ctx))
		if err == nil {
			err = checkUnique(items)
		}

		c.mu.Lock()
		if c.seq != seq {
			c.mu.Unlock()
			if attempt < staleRetries {
				c.logger.Debug(op+" overtaken by a local change, listing again")
				continue
			}
			c.logger.Warn(op+" skipped", "error", ErrStale)
			return fmt.Errorf("%s: %w", op, ErrStale)
		}
		if err != nil {
			if resetOnFailure {
				c.items = []model.Item{}
				c.gen++
			}
			c.mu.Unlock()
			c.logger.Warn(op+" failed", "error", err)
			if resetOnFailure {
				c.changed()
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		c.items = append([]model.Item{}, items...)
		c.gen++
		c.mu.Unlock()
		c.logger.Debug(op, "items", len(items))
		c.changed()
		return nil
	}
}

// Add asks the service to create an item and appends it once the service
// has assigned its id. On failure the list is unchanged.
func (c *Core) Add(ctx context.Context, text string) (model.Item, error) {
	text, err := model.NormalizeText(text)
	if err != nil {
		return model.Item{}, fmt.Errorf("add: %w", err)
	}

	it, err := c.gw.Create(context.WithoutCancel(ctx), text)
	if err != nil {
		c.logger.Warn("add failed", "text", text, "error", err)
		return model.Item{}, fmt.Errorf("add: %w", err)
	}

	c.mu.Lock()
	// A refresh that raced the create may already have brought it in.
	if i := c.indexLocked(it.ID); i >= 0 {
		c.items[i] = it
	} else {
		c.items = append(c.items, it)
	}
	c.seq++
	c.mu.Unlock()
	c.logger.Debug("added", "id", it.ID, "text", it.Text)
	c.changed()
	return it, nil
}

// Toggle flips the item's completed flag at once, then asks the service to
// do the same. If the service call fails the flag is restored.
func (c *Core) Toggle(ctx context.Context, id int64) error {
	release, err := c.ids.acquire(ctx, id)
	if err != nil {
		return fmt.Errorf("toggle %d: %w", id, err)
	}
	defer release()

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	prior := c.items[i].Completed
	c.items[i].Completed = !prior
	c.pending[id] = true
	c.seq++
	gen := c.gen
	c.mu.Unlock()
	c.changed()

	err = c.gw.ToggleCompletion(context.WithoutCancel(ctx), id)

	c.mu.Lock()
	delete(c.pending, id)
	c.seq++
	if err != nil && gen == c.gen {
		if i := c.indexLocked(id); i >= 0 {
			c.items[i].Completed = prior
		}
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.logger.Warn("toggle failed, reverted", "id", id, "error", err)
		return fmt.Errorf("toggle %d: %w", id, err)
	}
	c.logger.Debug("toggled", "id", id, "completed", !prior)
	return nil
}

// Remove asks the service to delete the item and drops it locally only
// after the service confirms. On failure the list is unchanged.
func (c *Core) Remove(ctx context.Context, id int64) error {
	release, err := c.ids.acquire(ctx, id)
	if err != nil {
		return fmt.Errorf("remove %d: %w", id, err)
	}
	defer release()

	c.mu.Lock()
	known := c.indexLocked(id) >= 0
	c.mu.Unlock()
	if !known {
		return fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}

	if err := c.gw.Delete(context.WithoutCancel(ctx), id); err != nil {
		c.logger.Warn("remove failed", "id", id, "error", err)
		return fmt.Errorf("remove %d: %w", id, err)
	}

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.seq++
	c.mu.Unlock()
	c.logger.Debug("removed", "id", id)
	c.changed()
	return nil
}

func (c *Core) indexLocked(id int64) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Core) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func checkUnique(items []model.Item) error {
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return fmt.Errorf("%w: service returned duplicate id %d", ErrTransport, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
