package paygate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/craftlink/craftlink-backend/pkg/logger"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","event":"checkout_session.completed"}`)
	client := NewClient(Config{WebhookSecret: "whsec_test"}, logger.New("debug", "test"))

	t.Run("valid signature accepted", func(t *testing.T) {
		assert.True(t, client.VerifyWebhookSignature(body, signBody("whsec_test", body)))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		assert.False(t, client.VerifyWebhookSignature(body, signBody("whsec_other", body)))
	})

	t.Run("tampered body rejected", func(t *testing.T) {
		sig := signBody("whsec_test", body)
		tampered := []byte(`{"id":"evt_1","event":"payout.completed"}`)
		assert.False(t, client.VerifyWebhookSignature(tampered, sig))
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		assert.False(t, client.VerifyWebhookSignature(body, ""))
	})

	t.Run("unset secret skips verification", func(t *testing.T) {
		open := NewClient(Config{}, logger.New("debug", "test"))
		assert.True(t, open.VerifyWebhookSignature(body, "anything"))
	})
}
