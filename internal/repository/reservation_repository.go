package repository

import (
	"context"
	"errors"

	"live-commerce/internal/domain"
)

var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepository defines the interface for reservation data access
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	Update(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context) ([]*domain.Reservation, error)
}

type reservationRepository struct {
	reservations *Collection[domain.Reservation]
}

// NewReservationRepository creates a new in-memory ReservationRepository
func NewReservationRepository() ReservationRepository {
	return &reservationRepository{reservations: NewCollection[domain.Reservation]()}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	stored := r.reservations.Insert(ctx, func(id int64) domain.Reservation {
		res := *reservation
		res.ID = id
		return res
	})
	reservation.ID = stored.ID
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	_, err := r.reservations.Update(ctx, reservation.ID, func(domain.Reservation) (domain.Reservation, error) {
		return *reservation, nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrReservationNotFound
	}
	return err
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := r.reservations.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) List(ctx context.Context) ([]*domain.Reservation, error) {
	all := r.reservations.List(ctx, nil)
	out := make([]*domain.Reservation, 0, len(all))
	for i := range all {
		out = append(out, &all[i])
	}
	return out, nil
}
