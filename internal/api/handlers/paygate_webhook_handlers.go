package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/cache"
	"github.com/craftlink/craftlink-backend/pkg/logger"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
)

// dedupeTTL bounds how long delivered event ids are remembered
const dedupeTTL = 24 * time.Hour

// SettlementEventService defines the settlement operations driven by webhook events
type SettlementEventService interface {
	HandleCheckoutCompleted(ctx context.Context, session *paygate.Session) error
	HandlePayoutCompleted(ctx context.Context, payoutID string) error
	HandlePayoutFailed(ctx context.Context, payoutID, reason string) error
}

// CashoutEventService defines the cashout operations driven by webhook events
type CashoutEventService interface {
	HandlePayoutCompleted(ctx context.Context, payoutID string) error
	HandlePayoutFailed(ctx context.Context, payoutID, reason string) error
	HandlePayoutDelayed(ctx context.Context, payoutID string) error
}

// PaygateWebhookHandler handles payment gateway webhook notifications
type PaygateWebhookHandler struct {
	gateway    paygate.Gateway
	settlement SettlementEventService
	cashouts   CashoutEventService
	redis      cache.RedisClient
	logger     *logger.Logger
}

// NewPaygateWebhookHandler creates a new gateway webhook handler
func NewPaygateWebhookHandler(
	gateway paygate.Gateway,
	settlement SettlementEventService,
	cashouts CashoutEventService,
	redis cache.RedisClient,
	logger *logger.Logger,
) *PaygateWebhookHandler {
	return &PaygateWebhookHandler{
		gateway:    gateway,
		settlement: settlement,
		cashouts:   cashouts,
		redis:      redis,
		logger:     logger,
	}
}

// webhookPayload is the gateway's event envelope
type webhookPayload struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// payoutEvent is the data object of payout.* events
type payoutEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// HandleWebhook handles all gateway webhook events
// POST /webhooks/paygate
func (h *PaygateWebhookHandler) HandleWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	signature := c.GetHeader("X-Paygate-Signature")
	if !h.gateway.VerifyWebhookSignature(rawBody, signature) {
		metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		h.logger.Warn("Invalid gateway webhook signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		h.logger.Error("Failed to parse webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// Gateways redeliver events; the settlement step is idempotent anyway,
	// but the dedupe keeps redeliveries from doing redundant work. The claim
	// is released again if processing fails, so the redelivery is handled
	// instead of answered as a duplicate.
	dedupeKey := ""
	if payload.ID != "" {
		dedupeKey = fmt.Sprintf("webhook:event:%s", payload.ID)
		fresh, err := h.redis.SetNX(c.Request.Context(), dedupeKey, "1", dedupeTTL)
		if err != nil {
			h.logger.Warn("Webhook dedupe unavailable", "error", err)
			dedupeKey = ""
		} else if !fresh {
			metrics.WebhookEvents.WithLabelValues(payload.Event, "duplicate").Inc()
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
	}

	h.logger.Info("Received gateway webhook", "event", payload.Event, "event_id", payload.ID)

	switch payload.Event {
	case "checkout_session.completed":
		h.handleCheckoutCompleted(c, dedupeKey, payload.Data)
	case "payout.completed":
		h.handlePayoutEvent(c, dedupeKey, payload.Data, "completed")
	case "payout.failed":
		h.handlePayoutEvent(c, dedupeKey, payload.Data, "failed")
	case "payout.delayed":
		h.handlePayoutEvent(c, dedupeKey, payload.Data, "delayed")
	default:
		metrics.WebhookEvents.WithLabelValues(payload.Event, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

// releaseDedupe frees a claimed event id after a processing failure so the
// gateway's redelivery is handled rather than answered as a duplicate
func (h *PaygateWebhookHandler) releaseDedupe(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := h.redis.Del(c.Request.Context(), key); err != nil {
		h.logger.Error("Failed to release webhook dedupe claim", "key", key, "error", err)
	}
}

func (h *PaygateWebhookHandler) handleCheckoutCompleted(c *gin.Context, dedupeKey string, data json.RawMessage) {
	session, err := paygate.ParseSessionPayload(data)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("checkout_session.completed", "invalid").Inc()
		h.logger.Error("Failed to parse checkout session event", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session data"})
		return
	}

	if err := h.settlement.HandleCheckoutCompleted(c.Request.Context(), session); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			// Not ours; acknowledge so the gateway stops redelivering
			metrics.WebhookEvents.WithLabelValues("checkout_session.completed", "unmatched").Inc()
			h.logger.Warn("No intent for checkout session", "session_id", session.ID)
			c.JSON(http.StatusOK, gin.H{"status": "unmatched"})
			return
		}
		metrics.WebhookEvents.WithLabelValues("checkout_session.completed", "error").Inc()
		h.logger.Error("Failed to process checkout completion",
			"session_id", session.ID,
			"error", err)
		h.releaseDedupe(c, dedupeKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	metrics.WebhookEvents.WithLabelValues("checkout_session.completed", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// handlePayoutEvent routes a payout event to whichever side owns the payout:
// settlement intents first, then cashouts
func (h *PaygateWebhookHandler) handlePayoutEvent(c *gin.Context, dedupeKey string, data json.RawMessage, kind string) {
	event := "payout." + kind

	var p payoutEvent
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		metrics.WebhookEvents.WithLabelValues(event, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout data"})
		return
	}

	ctx := c.Request.Context()
	err := h.dispatchPayoutToSettlement(ctx, p, kind)
	if errors.Is(err, entities.ErrNotFound) {
		err = h.dispatchPayoutToCashout(ctx, p, kind)
	}

	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues(event, "unmatched").Inc()
			h.logger.Warn("No record for payout event", "payout_id", p.ID, "event", event)
			c.JSON(http.StatusOK, gin.H{"status": "unmatched"})
			return
		}
		metrics.WebhookEvents.WithLabelValues(event, "error").Inc()
		h.logger.Error("Failed to process payout event",
			"payout_id", p.ID,
			"event", event,
			"error", err)
		h.releaseDedupe(c, dedupeKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	metrics.WebhookEvents.WithLabelValues(event, "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (h *PaygateWebhookHandler) dispatchPayoutToSettlement(ctx context.Context, p payoutEvent, kind string) error {
	switch kind {
	case "completed":
		return h.settlement.HandlePayoutCompleted(ctx, p.ID)
	case "failed":
		return h.settlement.HandlePayoutFailed(ctx, p.ID, p.Reason)
	case "delayed":
		// Settlement payouts have no delayed handling; let the cashout side
		// claim the event.
		return entities.ErrNotFound
	}
	return entities.ErrNotFound
}

func (h *PaygateWebhookHandler) dispatchPayoutToCashout(ctx context.Context, p payoutEvent, kind string) error {
	switch kind {
	case "completed":
		return h.cashouts.HandlePayoutCompleted(ctx, p.ID)
	case "failed":
		return h.cashouts.HandlePayoutFailed(ctx, p.ID, p.Reason)
	case "delayed":
		return h.cashouts.HandlePayoutDelayed(ctx, p.ID)
	}
	return entities.ErrNotFound
}
