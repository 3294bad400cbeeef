package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by a Collection for an unknown id
var ErrNotFound = errors.New("record not found")

// Collection is an in-memory table keyed by a sequential id. The stub
// backend keeps every collection in one of these.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  map[int64]T
	nextID int64
}

// NewCollection creates an empty collection whose first id is 1
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[int64]T)}
}

// Insert assigns the next id and stores the record build returns for it
func (c *Collection[T]) Insert(ctx context.Context, build func(id int64) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	item := build(c.nextID)
	c.items[c.nextID] = item
	return item
}

// Get returns the record with id
func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item, nil
}

// Update replaces the record with id by the result of fn. fn runs under the
// collection lock and must not call back into the collection.
func (c *Collection[T]) Update(ctx context.Context, id int64, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, ok := c.items[id]
	if !ok {
		return zero, ErrNotFound
	}

	updated, err := fn(item)
	if err != nil {
		return zero, err
	}
	c.items[id] = updated
	return updated, nil
}

// Delete removes the record with id and returns it
func (c *Collection[T]) Delete(ctx context.Context, id int64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	delete(c.items, id)
	return item, nil
}

// List returns the records accepted by keep, ordered by id. A nil keep
// returns everything.
func (c *Collection[T]) List(ctx context.Context, keep func(T) bool) []T {
	c.mu.RLock()
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		item := c.items[id]
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	c.mu.RUnlock()

	return out
}

// Len returns the number of stored records
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
