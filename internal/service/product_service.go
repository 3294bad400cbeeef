package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"live-commerce/internal/domain"
	"live-commerce/internal/repository"
	"live-commerce/internal/storage"

	"go.uber.org/zap"
)

var ErrInvalidImage = errors.New("invalid image")

// ImageStore keeps uploaded product images
type ImageStore interface {
	Put(ctx context.Context, r io.Reader) (storage.PutResult, error)
	Delete(ctx context.Context, keyOrURL string) error
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, fields domain.ProductFields, image io.Reader) (*domain.Product, error)
	// Update replaces the editable fields. A nil image keeps the stored one.
	Update(ctx context.Context, id int64, fields domain.ProductFields, image io.Reader) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
	images   ImageStore
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products repository.ProductRepository, images ImageStore, logger *zap.Logger) ProductService {
	return &productService{products: products, images: images, logger: logger}
}

func (s *productService) Create(ctx context.Context, fields domain.ProductFields, image io.Reader) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{CreatedAt: now, UpdatedAt: now}
	fields.Apply(product)

	if image != nil {
		url, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, fields domain.ProductFields, image io.Reader) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousImage := product.ImageURL
	fields.Apply(product)
	product.UpdatedAt = time.Now().UTC()

	var uploaded string
	if image != nil {
		url, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		uploaded = url
		product.ImageURL = url
	}

	if err := s.products.Update(ctx, product); err != nil {
		if uploaded != "" {
			s.dropImage(ctx, uploaded)
		}
		return nil, err
	}

	if image != nil && previousImage != "" {
		s.dropImage(ctx, previousImage)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	product, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if product.ImageURL != "" {
		s.dropImage(ctx, product.ImageURL)
	}
	return nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *productService) storeImage(ctx context.Context, image io.Reader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("%w: uploads are disabled", ErrInvalidImage)
	}
	res, err := s.images.Put(ctx, image)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return res.URL, nil
}

func (s *productService) dropImage(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("Failed to delete product image", zap.String("image", url), zap.Error(err))
	}
}
