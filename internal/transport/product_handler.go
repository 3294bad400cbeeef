package transport

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"live-commerce/internal/domain"
	"live-commerce/internal/middleware"
	"live-commerce/internal/repository"
	"live-commerce/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// MaxUploadSize caps a multipart product request
	MaxUploadSize = 10 << 20

	productField = "product"
	imageField   = "image"
)

// ProductHandler serves /api/products. Create and update accept either a
// JSON body or a multipart form with the product JSON in the "product" field
// and an optional "image" file.
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the product routes. guard, when set, wraps every
// mutating route.
func (h *ProductHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guardOrPassthrough(guard))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns products filtered by the category, q and live query parameters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.ProductFilter{
		Category: query.Get("category"),
		Query:    query.Get("q"),
	}
	if raw := query.Get("live"); raw != "" {
		live, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "live must be true or false")
			return
		}
		filter.Live = &live
	}

	products, err := h.productService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, image, ok := h.readProduct(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	product, err := h.productService.Create(r.Context(), fields, readerOrNil(image))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.Bool("image", product.ImageURL != ""))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update replaces a product. Without an image file the stored image is kept.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	fields, image, ok := h.readProduct(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	product, err := h.productService.Update(r.Context(), id, fields, readerOrNil(image))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product and its image
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// readProduct decodes the product fields and the optional image. It answers
// the request itself when the body is unusable.
func (h *ProductHandler) readProduct(w http.ResponseWriter, r *http.Request) (domain.ProductFields, io.ReadCloser, bool) {
	var fields domain.ProductFields

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := middleware.DecodeAndValidate(r, &fields); err != nil {
			h.logger.Debug("Product validation failed", zap.Error(err))
			middleware.RespondWithDecodeError(w, err)
			return fields, nil, false
		}
		return fields, nil, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "upload is too large")
			return fields, nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return fields, nil, false
	}

	payload := strings.TrimSpace(r.FormValue(productField))
	if payload == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing product field")
		return fields, nil, false
	}
	if err := middleware.UnmarshalAndValidate([]byte(payload), &fields); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return fields, nil, false
	}

	file, _, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return fields, nil, true
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image field")
		return fields, nil, false
	}
	return fields, file, true
}

func (h *ProductHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidImage):
		middleware.RespondWithError(w, http.StatusBadRequest, "image must be a png, jpeg, gif or webp file")
	default:
		h.logger.Error("Product request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process product")
	}
}

// readerOrNil keeps a nil ReadCloser from becoming a non-nil io.Reader
func readerOrNil(rc io.ReadCloser) io.Reader {
	if rc == nil {
		return nil
	}
	return rc
}
