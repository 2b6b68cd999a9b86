package dal

import (
	"context"
	"sync"
)

// lockTable hands out one exclusive lock per key. Each key is a one-slot
// channel so a waiter can give up when its context ends. Entries are
// reference counted and removed once nobody holds or waits for them.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]*lockSlot)}
}

// acquire blocks until key is free or ctx is done. The returned func
// releases the lock and must be called exactly once.
func (t *lockTable) acquire(ctx context.Context, key string) (func(), error) {
	t.mu.Lock()
	slot, ok := t.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		t.slots[key] = slot
	}
	slot.refs++
	t.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			t.drop(key, slot)
		}, nil
	case <-ctx.Done():
		t.drop(key, slot)
		return nil, ctx.Err()
	}
}

func (t *lockTable) drop(key string, slot *lockSlot) {
	t.mu.Lock()
	slot.refs--
	if slot.refs == 0 {
		delete(t.slots, key)
	}
	t.mu.Unlock()
}

func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
