// Package mirror holds the locally observable copy of the remote entity
// collections. All mutation goes through the Collection methods; readers get
// copies.
package mirror

import (
	"sync"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
)

// Item is an entity that can be stored in a Collection.
type Item[T any] interface {
	Key() string
	Clone() T
}

// Collection is an ordered, concurrency-safe list of entities keyed by ID.
type Collection[T Item[T]] struct {
	mu    sync.RWMutex
	items []T

	subMu  sync.Mutex
	subs   map[int]chan []T
	nextID int
}

func NewCollection[T Item[T]]() *Collection[T] {
	return &Collection[T]{subs: make(map[int]chan []T)}
}

// ReplaceAll discards the current content.
func (c *Collection[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	c.items = cloneAll(items)
	c.mu.Unlock()
	c.publish()
}

// Upsert replaces the item with the same key in place, or appends it.
func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	if i := c.index(item.Key()); i >= 0 {
		c.items[i] = item.Clone()
	} else {
		c.items = append(c.items, item.Clone())
	}
	c.mu.Unlock()
	c.publish()
}

// Prepend puts item first, dropping an older entry with the same key.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	if i := c.index(item.Key()); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.items = append([]T{item.Clone()}, c.items...)
	c.mu.Unlock()
	c.publish()
}

// Update applies fn to the item with key id and stores the result. It
// reports false when there is no such item.
func (c *Collection[T]) Update(id string, fn func(T) T) (T, bool) {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	updated := fn(c.items[i].Clone())
	c.items[i] = updated.Clone()
	c.mu.Unlock()
	c.publish()
	return updated, true
}

func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	i := c.index(id)
	if i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.mu.Unlock()
	if i < 0 {
		return false
	}
	c.publish()
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i].Clone(), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.items)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Subscribe returns a channel that always holds the latest snapshot after a
// change. Slow readers skip intermediate states. cancel closes the channel.
func (c *Collection[T]) Subscribe() (<-chan []T, func()) {
	ch := make(chan []T, 1)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Collection[T]) publish() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if len(c.subs) == 0 {
		return
	}
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.Snapshot()
	}
}

func (c *Collection[T]) index(id string) int {
	for i := range c.items {
		if c.items[i].Key() == id {
			return i
		}
	}
	return -1
}

func cloneAll[T Item[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Store owns the three mirrored collections.
type Store struct {
	Devices *Collection[models.Device]
	Parts   *Collection[models.SparePart]
	Logs    *Collection[models.MaintenanceLog]
}

func NewStore() *Store {
	return &Store{
		Devices: NewCollection[models.Device](),
		Parts:   NewCollection[models.SparePart](),
		Logs:    NewCollection[models.MaintenanceLog](),
	}
}
