package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftlink/craftlink-backend/internal/domain/services/notification"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// NotificationHandler exposes the in-app notification feed
type NotificationHandler struct {
	service *notification.Service
	logger  *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *notification.Service, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: logger}
}

// ListNotifications returns a page of the caller's notifications
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		NewError(http.StatusUnauthorized, ErrCodeUnauthorized).Message("Authentication required").Send(c)
		return
	}

	limit, offset := parsePagination(c)
	notifications, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"limit":         limit,
		"offset":        offset,
	})
}
