package repository

import (
	"context"
	"errors"

	"live-commerce/internal/domain"
)

var ErrStreamNotFound = errors.New("stream not found")

// StreamRepository defines the interface for stream data access
type StreamRepository interface {
	Create(ctx context.Context, stream *domain.Stream) error
	// Modify applies fn to the stored stream atomically
	Modify(ctx context.Context, id int64, fn func(*domain.Stream) error) (*domain.Stream, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Stream, error)
	List(ctx context.Context, status string) ([]*domain.Stream, error)
}

type streamRepository struct {
	streams *Collection[domain.Stream]
}

// NewStreamRepository creates a new in-memory StreamRepository
func NewStreamRepository() StreamRepository {
	return &streamRepository{streams: NewCollection[domain.Stream]()}
}

func (r *streamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	stored := r.streams.Insert(ctx, func(id int64) domain.Stream {
		s := *stream
		s.ID = id
		return s
	})
	*stream = stored
	return nil
}

func (r *streamRepository) Modify(ctx context.Context, id int64, fn func(*domain.Stream) error) (*domain.Stream, error) {
	updated, err := r.streams.Update(ctx, id, func(s domain.Stream) (domain.Stream, error) {
		if err := fn(&s); err != nil {
			return s, err
		}
		return s, nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *streamRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.streams.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrStreamNotFound
		}
		return err
	}
	return nil
}

func (r *streamRepository) FindByID(ctx context.Context, id int64) (*domain.Stream, error) {
	s, err := r.streams.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every stream, or only those in status when it is set
func (r *streamRepository) List(ctx context.Context, status string) ([]*domain.Stream, error) {
	all := r.streams.List(ctx, func(s domain.Stream) bool {
		return status == "" || s.Status == status
	})
	out := make([]*domain.Stream, 0, len(all))
	for i := range all {
		out = append(out, &all[i])
	}
	return out, nil
}
