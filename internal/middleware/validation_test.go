package middleware

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

type validationFixture struct {
	Name  string `json:"name" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid payload", `{"name":"soda","stock":3}`, false},
		{"missing required field", `{"stock":3}`, true},
		{"negative stock", `{"name":"soda","stock":-1}`, true},
		{"malformed json", `{"name":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))

			var payload validationFixture
			err := DecodeAndValidate(req, &payload)

			if tt.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	var payload validationFixture
	payload.Stock = -5
	err := ValidateRequest(payload)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(formatted))
	}

	fields := map[string]string{}
	for _, e := range formatted {
		fields[e.Field] = e.Message
	}
	if fields["Name"] != "This field is required" {
		t.Errorf("unexpected message for Name: %q", fields["Name"])
	}
	if !strings.Contains(fields["Stock"], "greater than or equal") {
		t.Errorf("unexpected message for Stock: %q", fields["Stock"])
	}

	// Non-validator errors yield no field entries
	if got := FormatValidationErrors(errors.New("boom")); got != nil {
		t.Errorf("expected nil for non-validator error, got %v", got)
	}
}
