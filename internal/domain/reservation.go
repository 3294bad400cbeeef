package domain

import (
	"time"
)

// Reservation holds products for a customer. Product ids are stored
// comma-joined, e.g. "101,102".
type Reservation struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	CustomerEmail string    `json:"customerEmail"`
	ProductIDs    string    `json:"productIds"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReservationRequest is the reservation payload
type ReservationRequest struct {
	CustomerName  string   `json:"customerName" validate:"required"`
	CustomerPhone string   `json:"customerPhone" validate:"required"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email"`
	ProductIDs    []string `json:"productIds"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
}
