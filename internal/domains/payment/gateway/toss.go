package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TossClient gọi Toss Payments confirm API. Chỉ cần một endpoint:
// mọi thứ khác (checkout widget, redirect) chạy phía client.
type TossClient struct {
	secretKey  string
	confirmURL string
	httpClient *http.Client
}

func NewTossClient(secretKey, confirmURL string) *TossClient {
	return &TossClient{
		secretKey:  secretKey,
		confirmURL: confirmURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ConfirmResult is the subset of the Toss payment object we keep.
type ConfirmResult struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	OrderName   string `json:"orderName"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	TotalAmount int64  `json:"totalAmount"`
	ApprovedAt  string `json:"approvedAt"`
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type tossError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Confirm finalizes an approved payment. Toss rejects a second confirm
// of the same paymentKey, so the caller must treat this as
// at-most-once per payment.
func (t *TossClient) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*ConfirmResult, error) {
	body, err := json.Marshal(confirmRequest{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode confirm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.confirmURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build confirm request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(t.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toss confirm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var tossErr tossError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&tossErr); decodeErr == nil && tossErr.Message != "" {
			return nil, fmt.Errorf("toss confirm rejected (%s): %s", tossErr.Code, tossErr.Message)
		}
		return nil, fmt.Errorf("toss confirm rejected: status %d", resp.StatusCode)
	}

	var result ConfirmResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode confirm response: %w", err)
	}
	return &result, nil
}
