package domain

import (
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       *float64  `json:"price"`
	Stock       *int      `json:"stock"`
	Category    string    `json:"category"`
	Live        bool      `json:"live"`
	SKU         string    `json:"sku,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductFields are the client-editable product fields
type ProductFields struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Category    string   `json:"category"`
	Live        bool     `json:"live"`
	SKU         string   `json:"sku"`
}

// Apply copies the editable fields onto p
func (f ProductFields) Apply(p *Product) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Stock = f.Stock
	p.Category = f.Category
	p.Live = f.Live
	p.SKU = f.SKU
}
