package paygate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature over the raw
// webhook body. When no secret is configured verification is skipped; that is
// a deployment misconfiguration, so the caller gets a warning log once.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if c.config.WebhookSecret == "" {
		c.logger.Warn("Gateway webhook secret not configured - skipping signature verification")
		return true
	}

	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
