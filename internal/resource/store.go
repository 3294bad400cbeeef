package resource

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Phase is the settled outcome of the most recent operation on a Store.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "idle"
	}
}

// Keyed is implemented by view models so a Store can find records by id.
type Keyed interface {
	Key() string
}

// State is a snapshot of a Store. Items and Item are separate slots: a
// list never overwrites the single record and vice versa. Loading and Err
// are never both set: a failure is reported once every call has settled.
type State[V any] struct {
	Items   []V
	Item    *V
	Loading bool
	Err     error
	Phase   Phase
}

// Ready reports whether the data in the snapshot can be trusted.
func (s State[V]) Ready() bool {
	return !s.Loading && s.Err == nil
}

// Store keeps request state for one consumer of a Client: the latest list,
// the latest single record, whether anything is in flight and the last
// error. Every call takes a context; once it is cancelled the call's
// result is dropped instead of applied.
type Store[P, R any, V Keyed] struct {
	client *Client[P, R, V]

	mu       sync.Mutex
	items    []V
	item     *V
	inflight int
	err      error
	phase    Phase
	listSeq  uint64
	itemSeq  uint64

	subMu       sync.Mutex
	subscribers map[int]func(State[V])
	nextSub     int
}

// NewStore wraps client with request state.
func NewStore[P, R any, V Keyed](client *Client[P, R, V]) *Store[P, R, V] {
	return &Store[P, R, V]{
		client:      client,
		subscribers: make(map[int]func(State[V])),
	}
}

// Client returns the underlying client
func (s *Store[P, R, V]) Client() *Client[P, R, V] { return s.client }

// Snapshot returns the current state.
func (s *Store[P, R, V]) Snapshot() State[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every state change. The returned func
// removes the subscription.
func (s *Store[P, R, V]) Subscribe(fn func(State[V])) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// List fetches the collection into the Items slot. When several lists
// overlap, only the most recently issued one is applied.
func (s *Store[P, R, V]) List(ctx context.Context, query url.Values) ([]V, error) {
	seq := s.begin(func() uint64 { s.listSeq++; return s.listSeq })

	items, err := s.client.List(ctx, query)

	s.finish(ctx, err, func() {
		if seq == s.listSeq {
			s.items = items
		}
	})
	return items, err
}

// Get fetches one record into the Item slot. A blank id is skipped.
func (s *Store[P, R, V]) Get(ctx context.Context, id string) (V, error) {
	if err := s.checkID("get", id); err != nil {
		var zero V
		return zero, err
	}

	seq := s.begin(func() uint64 { s.itemSeq++; return s.itemSeq })

	item, err := s.client.Get(ctx, id)

	s.finish(ctx, err, func() {
		if seq == s.itemSeq {
			s.item = &item
		}
	})
	return item, err
}

// Create posts a new record. The Items slot is not touched; callers re-list
// to see it.
func (s *Store[P, R, V]) Create(ctx context.Context, payload P, file *File) (V, error) {
	s.begin(nil)

	created, err := s.client.Create(ctx, payload, file)

	s.finish(ctx, err, nil)
	return created, err
}

// Update replaces a record and trusts the response body: matching entries
// in Items and Item are swapped for the updated view.
func (s *Store[P, R, V]) Update(ctx context.Context, id string, payload P, file *File) (V, error) {
	if err := s.checkID("update", id); err != nil {
		var zero V
		return zero, err
	}

	s.begin(nil)

	updated, err := s.client.Update(ctx, id, payload, file)

	s.finish(ctx, err, func() {
		key := updated.Key()
		for i := range s.items {
			if s.items[i].Key() == key {
				s.items[i] = updated
			}
		}
		if s.item != nil && (*s.item).Key() == key {
			s.item = &updated
		}
	})
	return updated, err
}

// Remove deletes a record. It is pruned from Items and Item only after the
// server has confirmed the delete.
func (s *Store[P, R, V]) Remove(ctx context.Context, id string) error {
	if err := s.checkID("remove", id); err != nil {
		return err
	}

	s.begin(nil)

	err := s.client.Remove(ctx, id)

	s.finish(ctx, err, func() {
		key := strings.TrimSpace(id)
		kept := s.items[:0:0]
		for _, v := range s.items {
			if v.Key() != key {
				kept = append(kept, v)
			}
		}
		s.items = kept
		if s.item != nil && (*s.item).Key() == key {
			s.item = nil
		}
	})
	return err
}

func (s *Store[P, R, V]) checkID(verb, id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError(s.client.op(verb), ErrMissingID)
	}
	return nil
}

func (s *Store[P, R, V]) begin(next func() uint64) uint64 {
	s.mu.Lock()
	var seq uint64
	if next != nil {
		seq = next()
	}
	s.inflight++
	s.err = nil
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
	return seq
}

func (s *Store[P, R, V]) finish(ctx context.Context, err error, apply func()) {
	s.mu.Lock()
	s.inflight--

	switch {
	case ctx.Err() != nil:
		// the caller is gone; leave data and error as they are
	case err != nil:
		s.err = err
		s.phase = PhaseFailure
	default:
		if apply != nil {
			apply()
		}
		// an overlapping call that failed keeps the failure visible
		if s.err == nil {
			s.phase = PhaseSuccess
		}
	}

	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

func (s *Store[P, R, V]) snapshotLocked() State[V] {
	items := make([]V, len(s.items))
	copy(items, s.items)

	var item *V
	if s.item != nil {
		v := *s.item
		item = &v
	}

	phase := s.phase
	if s.inflight > 0 {
		phase = PhaseLoading
	}

	// an error is reported once nothing is in flight
	var err error
	if s.inflight == 0 {
		err = s.err
	}

	return State[V]{
		Items:   items,
		Item:    item,
		Loading: s.inflight > 0,
		Err:     err,
		Phase:   phase,
	}
}

func (s *Store[P, R, V]) notify(state State[V]) {
	s.subMu.Lock()
	subs := make([]func(State[V]), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
