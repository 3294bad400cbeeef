package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type bookingRequest struct {
	CustomerName  string   `json:"customerName" validate:"required"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email"`
	Seats         *int     `json:"seats" validate:"omitempty,gte=1,lte=20"`
	ProductIDs    []string `json:"productIds"`
}

func jsonRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/api/reservations", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Property: required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool) bool {
			body := map[string]interface{}{"productIds": []string{"1"}}
			if includeName {
				body["customerName"] = "Asha"
			}
			if includeEmail {
				body["customerEmail"] = "asha@example.com"
			}

			var req bookingRequest
			err := DecodeAndValidate(jsonRequest(t, body), &req)

			if includeName && includeEmail {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: optional ranged fields are checked only when present
func TestProperty_RangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("seats outside 1..20 are rejected", prop.ForAll(
		func(seats int) bool {
			body := map[string]interface{}{
				"customerName":  "Asha",
				"customerEmail": "asha@example.com",
				"seats":         seats,
			}

			var req bookingRequest
			err := DecodeAndValidate(jsonRequest(t, body), &req)

			if seats >= 1 && seats <= 20 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-10, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	var req bookingRequest
	err := DecodeAndValidate(jsonRequest(t, map[string]string{"customerName": "Asha", "customerEmail": "nope"}), &req)
	if err == nil {
		t.Fatal("Expected a validation error")
	}

	errs := FormatValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("Expected one field error, got %+v", errs)
	}
	if errs[0].Field != "customerEmail" || errs[0].Message != "Invalid email format" {
		t.Errorf("Unexpected field error: %+v", errs[0])
	}
}

func TestRespondWithDecodeError(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		var req bookingRequest
		r := httptest.NewRequest("POST", "/", bytes.NewBufferString("{"))
		err := DecodeAndValidate(r, &req)

		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if w.Code != http.StatusBadRequest || body.Message != "invalid request body" || body.Details != nil {
			t.Errorf("Unexpected response %d %+v", w.Code, body)
		}
	})

	t.Run("field errors", func(t *testing.T) {
		var req bookingRequest
		err := UnmarshalAndValidate([]byte(`{"customerEmail":"asha@example.com"}`), &req)

		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Message != "validation failed" || body.Details["validation_errors"] == nil {
			t.Errorf("Unexpected response %+v", body)
		}
	})
}
