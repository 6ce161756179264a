package syncer

import (
	"context"
	"sync"
)

// idLocks hands out one lock per item id. Waiting honours ctx.
type idLocks struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func (l *idLocks) acquire(ctx context.Context, id int64) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[int64]*slot)
	}
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			l.drop(id, s)
		}, nil
	case <-ctx.Done():
		l.drop(id, s)
		return nil, ctx.Err()
	}
}

func (l *idLocks) drop(id int64, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}
