package repository

import (
	"context"
	"errors"
	"strings"

	"live-commerce/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Category string
	// Query matches name or description, case-insensitively
	Query string
	Live  *bool
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	products *Collection[domain.Product]
}

// NewProductRepository creates a new in-memory ProductRepository
func NewProductRepository() ProductRepository {
	return &productRepository{products: NewCollection[domain.Product]()}
}

// Create stores product and sets its id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	stored := r.products.Insert(ctx, func(id int64) domain.Product {
		p := *product
		p.ID = id
		return p
	})
	product.ID = stored.ID
	return nil
}

// Update replaces the stored product with the same id
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	_, err := r.products.Update(ctx, product.ID, func(domain.Product) (domain.Product, error) {
		return *product, nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

// Delete removes a product and returns what was stored
func (r *productRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := r.products.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := r.products.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the products matching filter ordered by id
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	matches := r.products.List(ctx, func(p domain.Product) bool {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			return false
		}
		if filter.Live != nil && p.Live != *filter.Live {
			return false
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			return false
		}
		return true
	})

	products := make([]*domain.Product, 0, len(matches))
	for i := range matches {
		products = append(products, &matches[i])
	}
	return products, nil
}
