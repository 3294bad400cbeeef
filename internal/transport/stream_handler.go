package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"live-commerce/internal/domain"
	"live-commerce/internal/middleware"
	"live-commerce/internal/repository"
	"live-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StreamHandler serves /api/streams, including the start and end actions
type StreamHandler struct {
	streamService service.StreamService
	logger        *zap.Logger
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(streamService service.StreamService, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		streamService: streamService,
		logger:        logger,
	}
}

// RegisterRoutes registers the stream routes. guard, when set, wraps every
// mutating route.
func (h *StreamHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/streams", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/live", h.Live)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guardOrPassthrough(guard))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/start", h.Start)
			r.Post("/{id}/end", h.End)
		})
	})
}

// List returns every stream, or those in the status query parameter
func (h *StreamHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
}

// Live returns the streams currently on air
func (h *StreamHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.StreamLive)
}

func (h *StreamHandler) list(w http.ResponseWriter, r *http.Request, status string) {
	streams, err := h.streamService.List(r.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list streams", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list streams")
		return
	}
	if streams == nil {
		streams = []*domain.Stream{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, streams)
}

func (h *StreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	stream, err := h.streamService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stream)
}

func (h *StreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.StreamRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Stream validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	stream, err := h.streamService.Create(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Stream scheduled", zap.Int64("stream_id", stream.ID), zap.String("channel", stream.Channel))
	middleware.RespondWithJSON(w, http.StatusCreated, stream)
}

func (h *StreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req domain.StreamRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	stream, err := h.streamService.Update(r.Context(), id, req)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stream)
}

func (h *StreamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.streamService.Delete(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Start puts a scheduled stream on air
func (h *StreamHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "started", h.streamService.Start)
}

// End closes a stream
func (h *StreamHandler) End(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "ended", h.streamService.End)
}

func (h *StreamHandler) transition(w http.ResponseWriter, r *http.Request, label string, apply func(ctx context.Context, id int64) (*domain.Stream, error)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	stream, err := apply(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Stream "+label, zap.Int64("stream_id", stream.ID))
	middleware.RespondWithJSON(w, http.StatusOK, stream)
}

func (h *StreamHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrStreamNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "stream not found")
	case errors.Is(err, service.ErrInvalidTransition):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Stream request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process stream")
	}
}
