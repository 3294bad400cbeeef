package resource

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type widgetInput struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// widgetID takes an id sent as a JSON string or number
type widgetID string

func (id *widgetID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = widgetID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = widgetID(n.String())
	return nil
}

type widgetRecord struct {
	ID    widgetID `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
}

type widgetView struct {
	ID    string
	Name  string
	Price float64
}

func (w widgetView) Key() string { return w.ID }

func normalizeWidget(r widgetRecord) widgetView {
	return widgetView{ID: string(r.ID), Name: r.Name, Price: r.Price}
}

func newWidgetClient(t *testing.T, baseURL string, encoding Encoding) *Client[widgetInput, widgetRecord, widgetView] {
	t.Helper()

	c, err := NewClient[widgetInput](Config[widgetRecord, widgetView]{
		Name:      "widgets",
		BaseURL:   baseURL,
		Normalize: normalizeWidget,
		Encoding:  encoding,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
