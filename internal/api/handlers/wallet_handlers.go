package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftlink/craftlink-backend/internal/domain/services/wallet"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// WalletHandler exposes wallet balance and ledger endpoints
type WalletHandler struct {
	service         *wallet.Service
	defaultCurrency string
	logger          *logger.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(service *wallet.Service, defaultCurrency string, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{
		service:         service,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// GetWallet returns the caller's wallet, provisioning it on first access
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	currency := c.DefaultQuery("currency", h.defaultCurrency)
	w, err := h.service.GetOrCreateWallet(c.Request.Context(), userID, currency)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetLedger returns a page of the caller's ledger entries
// GET /api/v1/wallet/ledger
func (h *WalletHandler) GetLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	currency := c.DefaultQuery("currency", h.defaultCurrency)
	limit, offset := parsePagination(c)

	entries, err := h.service.GetLedger(c.Request.Context(), userID, currency, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}
