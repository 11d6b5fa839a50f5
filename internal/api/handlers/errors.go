package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/domain/services/cashout"
)

// Error codes as constants for consistent error responses across handlers
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"

	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeInvalidAmount   = "INVALID_AMOUNT"

	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeNoPayoutDestination = "NO_PAYOUT_DESTINATION"
	ErrCodeCashoutFailed       = "CASHOUT_FAILED_FUNDS_RESTORED"

	ErrCodeGatewayError     = "GATEWAY_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
)

// ErrorResponseBuilder provides a fluent interface for building error responses
type ErrorResponseBuilder struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// NewError creates a new ErrorResponseBuilder
func NewError(status int, code string) *ErrorResponseBuilder {
	return &ErrorResponseBuilder{
		status: status,
		code:   code,
	}
}

// Message sets the error message
func (e *ErrorResponseBuilder) Message(msg string) *ErrorResponseBuilder {
	e.message = msg
	return e
}

// Detail adds a single detail to the error response
func (e *ErrorResponseBuilder) Detail(key string, value interface{}) *ErrorResponseBuilder {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// Send sends the error response
func (e *ErrorResponseBuilder) Send(c *gin.Context) {
	c.JSON(e.status, entities.ErrorResponse{
		Code:    e.code,
		Message: e.message,
		Details: e.details,
	})
}

// respondServiceError maps service-layer sentinel errors onto coded HTTP
// responses. Unknown errors become opaque 500s.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrValidation):
		NewError(http.StatusBadRequest, ErrCodeValidationError).Message(err.Error()).Send(c)
	case errors.Is(err, entities.ErrUnauthorized):
		NewError(http.StatusForbidden, ErrCodeForbidden).Message("You are not allowed to perform this action").Send(c)
	case errors.Is(err, entities.ErrNotFound):
		NewError(http.StatusNotFound, ErrCodeNotFound).Message("Resource not found").Send(c)
	case errors.Is(err, entities.ErrConflict):
		NewError(http.StatusConflict, ErrCodeConflict).Message("An active payment already exists for this item").Send(c)
	case errors.Is(err, entities.ErrInsufficientFunds), errors.Is(err, entities.ErrWalletNotFound):
		NewError(http.StatusConflict, ErrCodeInsufficientFunds).Message("Insufficient available balance").Send(c)
	case errors.Is(err, entities.ErrNoPayoutDestination):
		NewError(http.StatusPreconditionFailed, ErrCodeNoPayoutDestination).Message("Configure a payout destination first").Send(c)
	case errors.Is(err, cashout.ErrFundsRestored):
		NewError(http.StatusBadGateway, ErrCodeCashoutFailed).Message("The cashout failed; your funds were restored to your wallet").Send(c)
	default:
		var gwErr *paygate.GatewayError
		if errors.As(err, &gwErr) {
			NewError(http.StatusBadGateway, ErrCodeGatewayError).
				Message("The payment provider rejected the request").
				Detail("operation", gwErr.Operation).
				Send(c)
			return
		}
		NewError(http.StatusInternalServerError, ErrCodeInternalError).Message("Internal server error").Send(c)
	}
}
