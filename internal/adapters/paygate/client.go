package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/craftlink/craftlink-backend/pkg/circuitbreaker"
	"github.com/craftlink/craftlink-backend/pkg/logger"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
	"github.com/craftlink/craftlink-backend/pkg/retry"
)

// Config represents payment gateway API configuration
type Config struct {
	BaseURL       string
	APIKey        string
	SpaceID       string
	WebhookSecret string
	Timeout       time.Duration
	MaxRetries    int
}

// Client is the HTTP client for the hosted payment gateway
type Client struct {
	config     Config
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	logger     *logger.Logger
}

// NewClient creates a new gateway client
func NewClient(config Config, log *logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = config.MaxRetries

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    retry.NewRetrier(policy, log.Zap()),
		breaker:    circuitbreaker.New(circuitbreaker.Config{Name: "paygate"}),
		logger:     log,
	}
}

// CreateCheckoutSession opens a hosted checkout page for the given amount.
// The amount is converted to the gateway's minor-unit representation.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CreateCheckoutSessionRequest) (*CheckoutSessionResult, error) {
	c.logger.Info("Creating checkout session",
		"reference", req.Reference,
		"amount", req.Amount.String(),
		"currency", req.Currency)

	payload := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"reference":   req.Reference,
		"lineItems": []map[string]any{
			{
				"type":     "custom",
				"name":     req.Name,
				"quantity": 1,
				"price": map[string]any{
					"currency": req.Currency,
					"value":    minorUnits(req.Amount),
				},
			},
		},
		"successUrl": req.SuccessURL,
		"cancelUrl":  req.CancelURL,
		"metadata":   req.Metadata,
	}

	var result CheckoutSessionResult
	if err := c.doRequest(ctx, http.MethodPost, "checkout-sessions", req.IdempotencyKey, payload, &result); err != nil {
		c.logger.Error("Failed to create checkout session", "reference", req.Reference, "error", err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	c.logger.Info("Created checkout session",
		"session_id", result.ID,
		"order_number", result.OrderNumber,
		"reference", req.Reference)

	return &result, nil
}

// GetCheckoutSession fetches a session and normalizes the provider shape.
// Used by the redirect-fallback verification and the reconciliation sweep.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	endpoint := fmt.Sprintf("checkout-sessions/%s", sessionID)

	var raw json.RawMessage
	err := c.retrier.Do(ctx, func() error {
		raw = nil
		return c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	session, err := parseSession(raw)
	if err != nil {
		return nil, fmt.Errorf("parse checkout session %s: %w", sessionID, err)
	}

	return session, nil
}

// CreatePayout creates a disbursement to an external destination
func (c *Client) CreatePayout(ctx context.Context, req *CreatePayoutRequest) (*Payout, error) {
	c.logger.Info("Creating payout",
		"destination_kind", string(req.Destination.Kind),
		"amount", req.Amount.String(),
		"currency", req.Currency)

	payload := map[string]any{
		"amount": map[string]any{
			"currency": req.Currency,
			"value":    minorUnits(req.Amount),
		},
		"destination": req.Destination,
		"metadata":    req.Metadata,
	}

	var result payoutResult
	if err := c.doRequest(ctx, http.MethodPost, "payouts", req.IdempotencyKey, payload, &result); err != nil {
		c.logger.Error("Failed to create payout", "error", err)
		return nil, fmt.Errorf("create payout: %w", err)
	}

	c.logger.Info("Created payout", "payout_id", result.ID, "status", result.Status)
	return result.toPayout(), nil
}

// GetPayoutStatus fetches the current state of a payout
func (c *Client) GetPayoutStatus(ctx context.Context, payoutID string) (*Payout, error) {
	endpoint := fmt.Sprintf("payouts/%s", payoutID)

	var result payoutResult
	err := c.retrier.Do(ctx, func() error {
		return c.doRequest(ctx, http.MethodGet, endpoint, "", nil, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("get payout status: %w", err)
	}

	return result.toPayout(), nil
}

// doRequest performs one HTTP request against the gateway API
func (c *Client) doRequest(ctx context.Context, method, endpoint, idempotencyKey string, body, response interface{}) error {
	fullURL := fmt.Sprintf("%s/v1/%s", c.config.BaseURL, endpoint)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if c.config.SpaceID != "" {
		req.Header.Set("X-Space-Id", c.config.SpaceID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	start := time.Now()
	var resp *http.Response
	err = c.breaker.Execute(ctx, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		return doErr
	})
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return &GatewayError{Operation: endpoint, StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	metrics.GatewayRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{
			Operation:  endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if response == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if env.Result == nil {
		// Some endpoints respond without the envelope wrapper
		return json.Unmarshal(respBody, response)
	}

	if err := json.Unmarshal(env.Result, response); err != nil {
		return fmt.Errorf("failed to decode response result: %w", err)
	}

	return nil
}
