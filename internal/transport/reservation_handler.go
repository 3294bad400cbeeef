package transport

import (
	"errors"
	"net/http"

	"live-commerce/internal/domain"
	"live-commerce/internal/middleware"
	"live-commerce/internal/repository"
	"live-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReservationHandler serves /api/reservations
type ReservationHandler struct {
	reservationService service.ReservationService
	logger             *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService service.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		logger:             logger,
	}
}

// RegisterRoutes registers the reservation routes. guard, when set, wraps
// every route since reservations carry customer contact details.
func (h *ReservationHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/reservations", func(r chi.Router) {
		r.Use(guardOrPassthrough(guard))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list reservations", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if reservations == nil {
		reservations = []*domain.Reservation{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ReservationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Reservation validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("product_ids", reservation.ProductIDs),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, reservation)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req domain.ReservationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	reservation, err := h.reservationService.Update(r.Context(), id, req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.reservationService.Delete(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, service.ErrUnknownProduct):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Reservation request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process reservation")
	}
}
