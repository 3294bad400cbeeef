package catalog

import (
	"live-commerce/internal/resource"
)

// Product status labels
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product is a product record as the product service sends it
type Product struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category,omitempty"`
	Live        bool     `json:"live"`
	SKU         string   `json:"sku,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// ProductInput is the payload for creating and updating products
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category"`
	Live        bool    `json:"live"`
	SKU         string  `json:"sku,omitempty"`
}

// ProductView is the normalized product shown to users. Price is the
// formatted label and RawPrice the number it came from.
type ProductView struct {
	ID          string
	Name        string
	Description string
	Price       string
	RawPrice    *float64
	Stock       *int
	Category    string
	Status      string
	Live        bool
	SKU         *string
	ImageURL    string
	CreatedAt   string
	UpdatedAt   string

	CreatedLabel string
	UpdatedLabel string
}

func (v ProductView) Key() string { return v.ID }

// Record returns the raw record the view was derived from.
func (v ProductView) Record() Product {
	p := Product{
		ID:          ID(v.ID),
		Name:        v.Name,
		Description: v.Description,
		Price:       cloneFloat(v.RawPrice),
		Stock:       cloneInt(v.Stock),
		Category:    v.Category,
		Live:        v.Live,
		ImageURL:    v.ImageURL,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
	if v.SKU != nil {
		p.SKU = *v.SKU
	}
	return p
}

// Input returns a payload carrying the view's editable fields, for
// updates that change only some of them.
func (v ProductView) Input() ProductInput {
	in := ProductInput{
		Name:        v.Name,
		Description: v.Description,
		Category:    v.Category,
		Live:        v.Live,
	}
	if v.RawPrice != nil {
		in.Price = *v.RawPrice
	}
	if v.Stock != nil {
		in.Stock = *v.Stock
	}
	if v.SKU != nil {
		in.SKU = *v.SKU
	}
	return in
}

// NormalizeProduct returns the product normalizer. Relative image paths are
// resolved against assetBase.
func NormalizeProduct(assetBase string) func(Product) ProductView {
	return func(p Product) ProductView {
		v := ProductView{
			ID:           p.ID.String(),
			Name:         p.Name,
			Description:  p.Description,
			RawPrice:     cloneFloat(p.Price),
			Stock:        cloneInt(p.Stock),
			Category:     p.Category,
			Status:       StatusInactive,
			Live:         p.Live,
			ImageURL:     ResolveAsset(assetBase, p.ImageURL),
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
			CreatedLabel: FormatTimestamp(p.CreatedAt),
			UpdatedLabel: FormatTimestamp(p.UpdatedAt),
		}
		if p.Price != nil {
			v.Price = FormatNumber(*p.Price)
		}
		if p.Live {
			v.Status = StatusActive
		}
		if p.SKU != "" {
			sku := p.SKU
			v.SKU = &sku
		}
		return v
	}
}

// ProductClient is the REST client for the product collection
type ProductClient = resource.Client[ProductInput, Product, ProductView]

// NewProductClient binds the product collection at baseURL. Creates and
// updates are multipart: the JSON payload in "product" and the optional
// image in "image".
func NewProductClient(baseURL, assetBase string, t *resource.Transport) (*ProductClient, error) {
	return resource.NewClient[ProductInput](resource.Config[Product, ProductView]{
		Name:         "products",
		BaseURL:      baseURL,
		Normalize:    NormalizeProduct(assetBase),
		Encoding:     resource.EncodingMultipart,
		PayloadField: "product",
		FileField:    "image",
		Transport:    t,
	})
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
