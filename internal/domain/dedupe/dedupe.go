// Package dedupe tracks idempotency keys so a retried save is appended at
// most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the key capacity used when no option overrides it.
const DefaultMaxSize = 50000

// Deduper records idempotency keys.
type Deduper interface {
	// Reserve atomically claims key. When key was already claimed it returns
	// seen=true and the record ID committed for it ("" while the first save
	// is still in flight).
	Reserve(ctx context.Context, key string) (recordID string, seen bool)

	// Commit attaches the stored record ID to a reserved key.
	Commit(ctx context.Context, key, recordID string)

	// Release forgets key so the save can be retried. Used when the append
	// behind a reservation failed.
	Release(ctx context.Context, key string)

	Size() int64
}

// Key scopes an idempotency key to its owner so two owners never collide.
func Key(owner, idempotencyKey string) string {
	return owner + "\x00" + idempotencyKey
}

type entry struct {
	key      string
	recordID string
}

// inMemoryDeduper keeps keys in insertion order; eviction drops the oldest.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: DefaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Reserve(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		return el.Value.(*entry).recordID, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(&entry{key: key})
	d.size.Add(1)
	return "", false
}

func (d *inMemoryDeduper) Commit(_ context.Context, key, recordID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		el.Value.(*entry).recordID = recordID
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry).key)
	d.size.Add(-1)
}

// Size returns the number of keys held.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
