package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/domain/services/cashout"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// CashoutHandler exposes cashout endpoints
type CashoutHandler struct {
	service         *cashout.Service
	defaultCurrency string
	logger          *logger.Logger
}

// NewCashoutHandler creates a new cashout handler
func NewCashoutHandler(service *cashout.Service, defaultCurrency string, logger *logger.Logger) *CashoutHandler {
	return &CashoutHandler{
		service:         service,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// CashoutRequest is the payload for requesting a cashout. The idempotency
// key may come from the Idempotency-Key header or the body; a missing key is
// generated, which disables replay protection for that call.
type CashoutRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// RequestCashout withdraws available balance to the caller's payout destination
// POST /api/v1/cashouts
func (h *CashoutHandler) RequestCashout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	var req CashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewError(http.StatusBadRequest, ErrCodeInvalidRequest).Message("Invalid request payload").Send(c)
		return
	}

	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey == "" {
		idemKey = req.IdempotencyKey
	}
	if idemKey == "" {
		idemKey = uuid.New().String()
	}

	currency := req.Currency
	if currency == "" {
		currency = h.defaultCurrency
	}

	result, err := h.service.RequestCashout(c.Request.Context(), &cashout.Request{
		UserID:         userID,
		Role:           getRole(c),
		Amount:         req.Amount,
		Currency:       currency,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetCashout returns one of the caller's cashout requests
// GET /api/v1/cashouts/:id
func (h *CashoutHandler) GetCashout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	cashoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetCashout(c.Request.Context(), cashoutID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListCashouts returns the caller's cashout history
// GET /api/v1/cashouts
func (h *CashoutHandler) ListCashouts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	limit, offset := parsePagination(c)
	results, err := h.service.ListCashouts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cashouts": results,
		"limit":    limit,
		"offset":   offset,
	})
}
