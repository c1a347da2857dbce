package server

import (
	"net/http"
	"testing"

	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	waterreadingdomain "github.com/smallbiznis/tenora/internal/waterreading/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		typeName string
	}{
		{"meter regression is a validation error", waterreadingdomain.ErrMeterRegression, http.StatusBadRequest, "validation_error"},
		{"invalid period is a validation error", leasedomain.ErrInvalidPeriod, http.StatusBadRequest, "validation_error"},
		{"lease overlap conflicts", leasedomain.ErrLeaseOverlap, http.StatusConflict, "conflict"},
		{"missing reading is not found", waterreadingdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"running generation throttles", invoicedomain.ErrGenerationLocked, http.StatusTooManyRequests, "generation_in_progress"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			if status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, status)
			}
			if payload.Type != tc.typeName {
				t.Fatalf("expected type %s, got %s", tc.typeName, payload.Type)
			}
		})
	}
}

func TestMapMeterRegressionPayload(t *testing.T) {
	_, payload := mapError(waterreadingdomain.ErrMeterRegression)
	if len(payload.Errors) != 1 {
		t.Fatalf("expected 1 validation entry, got %d", len(payload.Errors))
	}
	entry := payload.Errors[0]
	if entry.Code != "meter_regression" {
		t.Fatalf("expected code meter_regression, got %s", entry.Code)
	}
	if entry.Field != "current_reading" {
		t.Fatalf("expected field current_reading, got %s", entry.Field)
	}
}
