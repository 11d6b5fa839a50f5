package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/domain/services/settlement"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// SettlementHandler exposes escrow and investment checkout endpoints
type SettlementHandler struct {
	service       *settlement.Service
	publicBaseURL string
	logger        *logger.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(service *settlement.Service, publicBaseURL string, logger *logger.Logger) *SettlementHandler {
	return &SettlementHandler{
		service:       service,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// CreateEscrowRequest is the payload for opening a delivery escrow checkout
type CreateEscrowRequest struct {
	SubmissionID uuid.UUID       `json:"submission_id" binding:"required"`
	GrossAmount  decimal.Decimal `json:"gross_amount" binding:"required"`
	Currency     string          `json:"currency"`
	PaymentType  string          `json:"payment_type"`
	Title        string          `json:"title"`
}

// CreateInvestmentRequest is the payload for opening an investment checkout
type CreateInvestmentRequest struct {
	PitchID     uuid.UUID       `json:"pitch_id" binding:"required"`
	GrossAmount decimal.Decimal `json:"gross_amount" binding:"required"`
	Currency    string          `json:"currency"`
	Title       string          `json:"title"`
}

func (h *SettlementHandler) returnURLs(intentKind string) (success, cancel string) {
	success = fmt.Sprintf("%s/payments/return?status=success&kind=%s", h.publicBaseURL, intentKind)
	cancel = fmt.Sprintf("%s/payments/return?status=cancelled&kind=%s", h.publicBaseURL, intentKind)
	return success, cancel
}

// CreateEscrow opens a checkout for a delivered submission
// POST /api/v1/escrows
func (h *SettlementHandler) CreateEscrow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	var req CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewError(http.StatusBadRequest, ErrCodeInvalidRequest).Message("Invalid request payload").Send(c)
		return
	}

	successURL, cancelURL := h.returnURLs("escrow")
	result, err := h.service.CreateEscrow(c.Request.Context(), &settlement.CreateEscrowRequest{
		SubmissionID: req.SubmissionID,
		PayerID:      userID,
		GrossAmount:  req.GrossAmount,
		Currency:     req.Currency,
		PaymentType:  entities.PaymentType(req.PaymentType),
		Title:        req.Title,
		SuccessURL:   successURL,
		CancelURL:    cancelURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// CreateInvestment opens a checkout for a pitch investment
// POST /api/v1/investments
func (h *SettlementHandler) CreateInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewError(http.StatusBadRequest, ErrCodeInvalidRequest).Message("Invalid request payload").Send(c)
		return
	}

	successURL, cancelURL := h.returnURLs("investment")
	result, err := h.service.CreateInvestment(c.Request.Context(), &settlement.CreateInvestmentRequest{
		PitchID:     req.PitchID,
		InvestorID:  userID,
		GrossAmount: req.GrossAmount,
		Currency:    req.Currency,
		Title:       req.Title,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetIntent returns a payment intent for its payer or payee
// GET /api/v1/escrows/:id and GET /api/v1/investments/:id
func (h *SettlementHandler) GetIntent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	intentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	intent, err := h.service.GetIntent(c.Request.Context(), intentID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// Verify is the redirect-fallback trigger: the buyer's browser returned from
// the hosted checkout, so poll the gateway and confirm if everything checks
// out. A non-confirming session is reported as pending, not as an error.
// POST /api/v1/escrows/:id/verify and POST /api/v1/investments/:id/verify
func (h *SettlementHandler) Verify(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	intentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	intent, confirmed, err := h.service.VerifyAndConfirm(c.Request.Context(), intentID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := "pending"
	if confirmed {
		status = "confirmed"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"intent": intent,
	})
}

// DevConfirm confirms an intent without gateway verification. The route is
// only registered when the dev bypass is enabled in configuration.
// POST /api/v1/escrows/:id/dev-confirm and POST /api/v1/investments/:id/dev-confirm
func (h *SettlementHandler) DevConfirm(c *gin.Context) {
	intentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	intent, err := h.service.DevBypassConfirm(c.Request.Context(), intentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}
