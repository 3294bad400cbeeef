package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"live-commerce/internal/resource"
)

// IDList is a list of product ids. The reservation service stores it as a
// comma-joined string, so both that and a JSON array are accepted.
type IDList []string

// UnmarshalJSON accepts "1,2", ["1","2"], [1,2] or null.
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitIDs(s)
		return nil
	}

	var ids []ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	var out IDList
	for _, id := range ids {
		if s := strings.TrimSpace(id.String()); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// SplitIDs splits a comma-joined id string, dropping blanks.
func SplitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Reservation is a reservation record
type Reservation struct {
	ID            ID     `json:"id"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
	ProductIDs    IDList `json:"productIds"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// ReservationInput is the payload for creating a reservation
type ReservationInput struct {
	CustomerName  string   `json:"customerName" validate:"required"`
	CustomerPhone string   `json:"customerPhone" validate:"required"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email"`
	ProductIDs    []string `json:"productIds"`
	Date          string   `json:"date"`
	Time          string   `json:"time"`
}

type ReservationView struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	ProductIDs    []string
	Date          string
	Time          string
	// Schedule joins date and time for display
	Schedule     string
	CreatedAt    string
	CreatedLabel string
}

func (v ReservationView) Key() string { return v.ID }

// Record returns the raw record the view was derived from.
func (v ReservationView) Record() Reservation {
	return Reservation{
		ID:            ID(v.ID),
		CustomerName:  v.CustomerName,
		CustomerPhone: v.CustomerPhone,
		CustomerEmail: v.CustomerEmail,
		ProductIDs:    cloneIDs(v.ProductIDs),
		Date:          v.Date,
		Time:          v.Time,
		CreatedAt:     v.CreatedAt,
	}
}

// NormalizeReservation returns the reservation normalizer.
func NormalizeReservation() func(Reservation) ReservationView {
	return func(r Reservation) ReservationView {
		return ReservationView{
			ID:            r.ID.String(),
			CustomerName:  r.CustomerName,
			CustomerPhone: r.CustomerPhone,
			CustomerEmail: r.CustomerEmail,
			ProductIDs:    cloneIDs(r.ProductIDs),
			Date:          r.Date,
			Time:          r.Time,
			Schedule:      strings.TrimSpace(r.Date + " " + r.Time),
			CreatedAt:     r.CreatedAt,
			CreatedLabel:  FormatTimestamp(r.CreatedAt),
		}
	}
}

// ReservationClient is the REST client for the reservation collection
type ReservationClient = resource.Client[ReservationInput, Reservation, ReservationView]

// NewReservationClient binds the reservation collection at baseURL. Payloads
// are sent as JSON.
func NewReservationClient(baseURL string, t *resource.Transport) (*ReservationClient, error) {
	return resource.NewClient[ReservationInput](resource.Config[Reservation, ReservationView]{
		Name:      "reservations",
		BaseURL:   baseURL,
		Normalize: NormalizeReservation(),
		Encoding:  resource.EncodingJSON,
		Transport: t,
	})
}

func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
