package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// One process owns the file; the mutex serializes its handlers.

const DataFileName = "todos.json"

// document is the on-disk layout. NextID survives deletions so ids are
// never reused.
type document struct {
	NextID int64        `json:"next_id"`
	Items  []model.Item `json:"items"`
}

type Store struct {
	mu   sync.Mutex
	path string
}

var _ store.Store = (*Store)(nil)

// Open returns a store backed by path, creating its directory.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) load() (document, error) {
	doc := document{NextID: 1, Items: []model.Item{}}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("json unmarshal: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	for _, it := range doc.Items {
		if it.ID >= doc.NextID {
			doc.NextID = it.ID + 1
		}
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (s *Store) Create(ctx context.Context, text string) (model.Item, error) {
	text, err := model.NormalizeText(text)
	if err != nil {
		return model.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return model.Item{}, err
	}
	it := model.Item{ID: doc.NextID, Text: text}
	doc.NextID++
	doc.Items = append(doc.Items, it)
	if err := s.save(doc); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *Store) Toggle(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(doc.Items, id)
	if idx < 0 {
		return fmt.Errorf("toggle %d: %w", id, store.ErrNotFound)
	}
	doc.Items[idx].Completed = !doc.Items[idx].Completed
	return s.save(doc)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(doc.Items, id)
	if idx < 0 {
		return fmt.Errorf("delete %d: %w", id, store.ErrNotFound)
	}
	doc.Items = append(doc.Items[:idx], doc.Items[idx+1:]...)
	return s.save(doc)
}

func (s *Store) Replace(ctx context.Context, items []model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return fmt.Errorf("replace: duplicate id %d", it.ID)
		}
		seen[it.ID] = true
		if it.ID >= doc.NextID {
			doc.NextID = it.ID + 1
		}
	}
	doc.Items = append([]model.Item{}, items...)
	return s.save(doc)
}

func (s *Store) Close() error { return nil }

func indexOf(items []model.Item, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
