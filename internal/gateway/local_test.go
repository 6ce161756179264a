package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
)

// brokenStore fails every call with an I/O-like error.
type brokenStore struct{}

var errDisk = errors.New("disk on fire")

func (brokenStore) List(context.Context) ([]model.Item, error)          { return nil, errDisk }
func (brokenStore) Create(context.Context, string) (model.Item, error) { return model.Item{}, errDisk }
func (brokenStore) Toggle(context.Context, int64) error                { return errDisk }
func (brokenStore) Delete(context.Context, int64) error                { return errDisk }
func (brokenStore) Replace(context.Context, []model.Item) error        { return errDisk }
func (brokenStore) Close() error                                       { return nil }

var _ store.Store = brokenStore{}

func TestLocal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := jsonstore.Open(filepath.Join(t.TempDir(), jsonstore.DataFileName))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	gw := Local{Store: s}

	items, err := gw.List(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("List() = %v, %v; want empty, nil", items, err)
	}
	it, err := gw.Create(ctx, "bread")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if it.ID == 0 || it.Text != "bread" || it.Completed {
		t.Errorf("Create() = %+v", it)
	}
	if err := gw.ToggleCompletion(ctx, it.ID); err != nil {
		t.Errorf("ToggleCompletion() failed: %v", err)
	}
	if err := gw.Delete(ctx, it.ID); err != nil {
		t.Errorf("Delete() failed: %v", err)
	}
	if err := gw.Delete(ctx, it.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() err = %v, want ErrNotFound", err)
	}
}

func TestLocal_TransportFailure(t *testing.T) {
	ctx := context.Background()
	gw := Local{Store: brokenStore{}}

	if _, err := gw.List(ctx); !errors.Is(err, ErrTransport) {
		t.Errorf("List() err = %v, want ErrTransport", err)
	}
	if _, err := gw.Create(ctx, "x"); !errors.Is(err, ErrTransport) {
		t.Errorf("Create() err = %v, want ErrTransport", err)
	}
	if err := gw.ToggleCompletion(ctx, 1); !errors.Is(err, ErrTransport) {
		t.Errorf("ToggleCompletion() err = %v, want ErrTransport", err)
	}
	if err := gw.Delete(ctx, 1); !errors.Is(err, ErrTransport) {
		t.Errorf("Delete() err = %v, want ErrTransport", err)
	}
}
