package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chargecodedomain "github.com/smallbiznis/tenora/internal/chargecode/domain"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	waterreadingdomain "github.com/smallbiznis/tenora/internal/waterreading/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicedomain.ErrGenerationLocked):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "generation_in_progress",
			Message: "invoice generation already running",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, propertydomain.ErrInvalidID),
		errors.Is(err, propertydomain.ErrInvalidName),
		errors.Is(err, propertydomain.ErrInvalidAddress),
		errors.Is(err, propertydomain.ErrInvalidLandlord),
		errors.Is(err, housetypedomain.ErrInvalidID),
		errors.Is(err, housetypedomain.ErrInvalidName),
		errors.Is(err, housetypedomain.ErrInvalidProperty),
		errors.Is(err, housetypedomain.ErrInvalidRent),
		errors.Is(err, housetypedomain.ErrInvalidRateType),
		errors.Is(err, chargecodedomain.ErrInvalidID),
		errors.Is(err, chargecodedomain.ErrInvalidName),
		errors.Is(err, chargecodedomain.ErrInvalidProperty),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, tenantdomain.ErrInvalidFullName),
		errors.Is(err, tenantdomain.ErrInvalidEmail),
		errors.Is(err, tenantdomain.ErrInvalidPhone),
		errors.Is(err, tenantdomain.ErrInvalidIDNumber),
		errors.Is(err, unitdomain.ErrInvalidID),
		errors.Is(err, unitdomain.ErrInvalidUnitNumber),
		errors.Is(err, unitdomain.ErrInvalidProperty),
		errors.Is(err, unitdomain.ErrInvalidHouseType),
		errors.Is(err, unitdomain.ErrInvalidStatus),
		errors.Is(err, unitdomain.ErrEmptyBulkRequest),
		errors.Is(err, leasedomain.ErrInvalidID),
		errors.Is(err, leasedomain.ErrInvalidPeriod),
		errors.Is(err, leasedomain.ErrInvalidStatus),
		errors.Is(err, leasedomain.ErrInvalidRent),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidNumber),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidPeriod),
		errors.Is(err, invoicedomain.ErrInvalidQuantity),
		errors.Is(err, invoicedomain.ErrInvalidUnitPrice),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidDate),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, waterreadingdomain.ErrInvalidID),
		errors.Is(err, waterreadingdomain.ErrInvalidDate),
		errors.Is(err, waterreadingdomain.ErrInvalidReading),
		errors.Is(err, waterreadingdomain.ErrInvalidStatus),
		errors.Is(err, waterreadingdomain.ErrMeterRegression):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, propertydomain.ErrActiveLeaseExists),
		errors.Is(err, propertydomain.ErrAlreadyInactive),
		errors.Is(err, propertydomain.ErrAlreadyActive),
		errors.Is(err, housetypedomain.ErrUnitsExist),
		errors.Is(err, tenantdomain.ErrDuplicateEmail),
		errors.Is(err, tenantdomain.ErrDuplicateIDNumber),
		errors.Is(err, tenantdomain.ErrActiveLeaseExists),
		errors.Is(err, unitdomain.ErrActiveLeaseExists),
		errors.Is(err, unitdomain.ErrDuplicateNumber),
		errors.Is(err, leasedomain.ErrLeaseOverlap),
		errors.Is(err, leasedomain.ErrUnitNotRentable),
		errors.Is(err, invoicedomain.ErrDuplicateNumber):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, propertydomain.ErrNotFound),
		errors.Is(err, housetypedomain.ErrNotFound),
		errors.Is(err, chargecodedomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, unitdomain.ErrNotFound),
		errors.Is(err, leasedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrItemNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, waterreadingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if code == "meter_regression" {
		return "current_reading"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "meter_regression":
		return "reading below the previous reading"
	default:
		return "invalid value"
	}
}
