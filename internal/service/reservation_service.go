package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"live-commerce/internal/domain"
	"live-commerce/internal/repository"
)

var ErrUnknownProduct = errors.New("unknown product")

// ReservationService defines the interface for reservation business logic
type ReservationService interface {
	Create(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error)
	Update(ctx context.Context, id int64, req domain.ReservationRequest) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context) ([]*domain.Reservation, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	products     repository.ProductRepository
}

// NewReservationService creates a new ReservationService. When products is
// set, every reserved product id must exist.
func NewReservationService(reservations repository.ReservationRepository, products repository.ProductRepository) ReservationService {
	return &reservationService{reservations: reservations, products: products}
}

func (s *reservationService) Create(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	ids, err := s.productIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		ProductIDs:    ids,
		Date:          req.Date,
		Time:          req.Time,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return reservation, nil
}

func (s *reservationService) Update(ctx context.Context, id int64, req domain.ReservationRequest) (*domain.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.productIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	reservation.CustomerName = req.CustomerName
	reservation.CustomerPhone = req.CustomerPhone
	reservation.CustomerEmail = req.CustomerEmail
	reservation.ProductIDs = ids
	reservation.Date = req.Date
	reservation.Time = req.Time

	if err := s.reservations.Update(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) Delete(ctx context.Context, id int64) error {
	return s.reservations.Delete(ctx, id)
}

func (s *reservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

func (s *reservationService) List(ctx context.Context) ([]*domain.Reservation, error) {
	return s.reservations.List(ctx)
}

// productIDs checks the reserved ids and joins them with commas
func (s *reservationService) productIDs(ctx context.Context, ids []string) (string, error) {
	cleaned := make([]string, 0, len(ids))
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if s.products != nil {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return "", fmt.Errorf("%w: %s", ErrUnknownProduct, raw)
			}
			if _, err := s.products.FindByID(ctx, id); err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return "", fmt.Errorf("%w: %s", ErrUnknownProduct, raw)
				}
				return "", err
			}
		}
		cleaned = append(cleaned, raw)
	}
	return strings.Join(cleaned, ","), nil
}
