package resource

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Server-provided messages win over the generic fallback
func TestProperty_ServerMessageIsExtracted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a message field is returned verbatim", prop.ForAll(
		func(message string, status int) bool {
			body, _ := json.Marshal(map[string]string{"message": message})
			return ErrorMessage(status, body) == message
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(400, 599),
	))

	properties.Property("nested error envelopes are understood", prop.ForAll(
		func(message string) bool {
			body, _ := json.Marshal(map[string]interface{}{
				"error": map[string]string{"code": "Bad Request", "message": message},
			})
			return ErrorMessage(400, body) == message
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Bodies without a usable message fall back to the status code
func TestProperty_FallbackMessageCarriesStatus(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("plain text bodies fall back to HTTP status", prop.ForAll(
		func(text string, status int) bool {
			return ErrorMessage(status, []byte(text)) == fmt.Sprintf("HTTP %d", status)
		},
		gen.AlphaString(),
		gen.IntRange(400, 599),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "HTTP 500"},
		{"missing message", `{"status":500}`, "HTTP 500"},
		{"blank message", `{"message":"   "}`, "HTTP 500"},
		{"non-string message", `{"message":42}`, "HTTP 500"},
		{"array body", `["DB down"]`, "HTTP 500"},
		{"error string", `{"error":"DB down"}`, "DB down"},
		{"message", `{"message":"DB down"}`, "DB down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(500, []byte(tt.body)); got != tt.want {
				t.Errorf("ErrorMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestKindHelpersOnForeignErrors(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", statusError("get widgets", 404, nil))

	if KindOf(err) != KindHTTPStatus {
		t.Errorf("KindOf = %q, want %q", KindOf(err), KindHTTPStatus)
	}
	if !IsNotFound(err) {
		t.Error("Expected wrapped 404 to be not found")
	}
	if KindOf(fmt.Errorf("plain")) != "" {
		t.Error("Expected empty kind for foreign errors")
	}
}
