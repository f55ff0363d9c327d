package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Order is the gateway's order handle returned at creation time
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the payment gateway's REST API
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

// NewClient creates a new gateway client
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder creates a payment order at the gateway
func (c *Client) CreateOrder(ctx context.Context, amount int64, receipt string) (*Order, error) {
	body := map[string]any{
		"amount":   amount,
		"currency": "INR",
		"receipt":  receipt,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create order failed: %s", resp.Status)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned empty order id")
	}

	return &order, nil
}

// VerifySignature checks the gateway's HMAC-SHA256 signature over
// "orderID|paymentID". The compare is constant-time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := SignPayload(orderID, paymentID, c.keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload computes the hex HMAC-SHA256 signature the gateway attaches to
// a completed payment
func SignPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
