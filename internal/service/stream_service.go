package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"live-commerce/internal/domain"
	"live-commerce/internal/repository"
)

var ErrInvalidTransition = errors.New("invalid stream transition")

// StreamService defines the interface for stream business logic
type StreamService interface {
	Create(ctx context.Context, req domain.StreamRequest) (*domain.Stream, error)
	Update(ctx context.Context, id int64, req domain.StreamRequest) (*domain.Stream, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Stream, error)
	// List returns all streams, or those in status when it is set
	List(ctx context.Context, status string) ([]*domain.Stream, error)
	Start(ctx context.Context, id int64) (*domain.Stream, error)
	End(ctx context.Context, id int64) (*domain.Stream, error)
}

type streamService struct {
	streams repository.StreamRepository
	now     func() time.Time
}

// NewStreamService creates a new StreamService
func NewStreamService(streams repository.StreamRepository) StreamService {
	return &streamService{streams: streams, now: time.Now}
}

func (s *streamService) Create(ctx context.Context, req domain.StreamRequest) (*domain.Stream, error) {
	stream := &domain.Stream{
		Title:       req.Title,
		Description: req.Description,
		HostID:      req.HostID,
		Status:      domain.StreamScheduled,
	}
	if err := s.streams.Create(ctx, stream); err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	// channel name is derived from the assigned id
	return s.streams.Modify(ctx, stream.ID, func(st *domain.Stream) error {
		st.Channel = fmt.Sprintf("stream-%d", st.ID)
		return nil
	})
}

func (s *streamService) Update(ctx context.Context, id int64, req domain.StreamRequest) (*domain.Stream, error) {
	return s.streams.Modify(ctx, id, func(st *domain.Stream) error {
		st.Title = req.Title
		st.Description = req.Description
		st.HostID = req.HostID
		return nil
	})
}

func (s *streamService) Delete(ctx context.Context, id int64) error {
	return s.streams.Delete(ctx, id)
}

func (s *streamService) Get(ctx context.Context, id int64) (*domain.Stream, error) {
	return s.streams.FindByID(ctx, id)
}

func (s *streamService) List(ctx context.Context, status string) ([]*domain.Stream, error) {
	return s.streams.List(ctx, status)
}

// Start puts a scheduled stream on air
func (s *streamService) Start(ctx context.Context, id int64) (*domain.Stream, error) {
	return s.streams.Modify(ctx, id, func(st *domain.Stream) error {
		if st.Status != domain.StreamScheduled {
			return fmt.Errorf("%w: cannot start a %s stream", ErrInvalidTransition, st.Status)
		}
		now := s.now().UTC()
		st.Status = domain.StreamLive
		st.StartTime = &now
		return nil
	})
}

// End closes a stream that has not ended yet
func (s *streamService) End(ctx context.Context, id int64) (*domain.Stream, error) {
	return s.streams.Modify(ctx, id, func(st *domain.Stream) error {
		if st.Status == domain.StreamEnded {
			return fmt.Errorf("%w: stream already ended", ErrInvalidTransition)
		}
		now := s.now().UTC()
		st.Status = domain.StreamEnded
		st.EndTime = &now
		return nil
	})
}
