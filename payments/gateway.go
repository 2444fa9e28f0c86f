package payments

import (
	"encoding/json"
	"fmt"
	"log"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// Gateway talks to the external payment provider. The provider is a named
// collaborator: it receives a payment intent and later reports the outcome
// through the signed webhook.
type Gateway struct {
	client *resty.Client
}

func NewGateway() *Gateway {
	client := resty.New().
		SetBaseURL(config.AppConfig.PaymentApiURL).
		SetHeader("Authorization", "Bearer "+config.AppConfig.PaymentApiKey).
		SetHeader("Content-Type", "application/json")
	return &Gateway{client: client}
}

// CreateIntent registers a payment intent with the provider and returns the
// provider's session id.
func (g *Gateway) CreateIntent(checkoutRef string, userID, courseID, amountCents uint) (string, error) {
	resp, err := g.client.R().
		SetBody(map[string]interface{}{
			"reference":    checkoutRef,
			"user_id":      userID,
			"course_id":    courseID,
			"amount_cents": amountCents,
		}).
		Post("checkout/sessions")
	if err != nil {
		return "", fmt.Errorf("payment gateway request failed: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		log.Printf("[PAYMENTS] Intent creation failed for %s: %s", checkoutRef, resp.String())
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode())
	}

	var intentResp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(resp.Body(), &intentResp); err != nil {
		return "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return intentResp.SessionID, nil
}
