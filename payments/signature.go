package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Webhook event types sent by the payment provider.
const (
	EventPaymentConfirmed = "payment.confirmed"
)

// WebhookEvent is the decoded payload of a provider webhook. Decoding happens
// only after the signature over the raw body has been verified.
type WebhookEvent struct {
	Type        string `json:"type"`
	CheckoutRef string `json:"checkout_ref"`
	AmountCents uint   `json:"amount_cents"`
}

// Sign computes the hex HMAC-SHA256 of the payload under the shared secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature against the raw, unparsed
// request body. Comparison is constant-time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// DecodeEvent parses a verified webhook body.
func DecodeEvent(payload []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
