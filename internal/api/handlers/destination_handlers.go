package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/repositories"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// DestinationHandler exposes payout destination endpoints
type DestinationHandler struct {
	repo   *repositories.DestinationRepository
	logger *logger.Logger
}

// NewDestinationHandler creates a new destination handler
func NewDestinationHandler(repo *repositories.DestinationRepository, logger *logger.Logger) *DestinationHandler {
	return &DestinationHandler{repo: repo, logger: logger}
}

// UpsertDestinationRequest is the payload for configuring a payout destination
type UpsertDestinationRequest struct {
	Provider   string `json:"provider" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
	AccountID  string `json:"account_id" binding:"required"`
	PayoutMode string `json:"payout_mode" binding:"required"`
}

// GetDestination returns the caller's payout destination with the raw
// account id masked
// GET /api/v1/payout-destination
func (h *DestinationHandler) GetDestination(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	dest, err := h.repo.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dest)
}

// UpsertDestination creates or replaces the caller's payout destination
// PUT /api/v1/payout-destination
func (h *DestinationHandler) UpsertDestination(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	var req UpsertDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewError(http.StatusBadRequest, ErrCodeInvalidRequest).Message("Invalid request payload").Send(c)
		return
	}

	dest := &entities.PayoutDestination{
		ID:            uuid.New(),
		UserID:        userID,
		Provider:      entities.DestinationProvider(req.Provider),
		ProviderID:    req.ProviderID,
		AccountID:     req.AccountID,
		MaskedAccount: entities.MaskAccount(req.AccountID),
		PayoutMode:    entities.PayoutMode(req.PayoutMode),
	}

	if err := h.repo.Upsert(c.Request.Context(), dest); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dest)
}
