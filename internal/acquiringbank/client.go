package acquiringbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the external acquiring bank over HTTP. It makes exactly one
// attempt per authorization: retries, if ever needed, belong to the caller.
type Client struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: config.BaseURL,
		logger:  logger,
	}
}

// Authorize submits an authorization request to the bank and decodes its
// verdict. Any transport failure, non-200 status or undecodable body is
// reported as an error; the caller decides what that means for the payment.
func (c *Client) Authorize(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal authorization request: %w", err)
	}

	url := fmt.Sprintf("%s/payments", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create authorization request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("sending authorization request to acquiring bank",
		"url", url,
		"currency", req.Currency,
		"amount", req.Amount)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("acquiring bank request failed", "error", err)
		return nil, fmt.Errorf("acquiring bank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("acquiring bank returned non-success status", "status", resp.StatusCode)
		return nil, fmt.Errorf("acquiring bank returned status %d", resp.StatusCode)
	}

	var bankResp AuthorizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&bankResp); err != nil {
		c.logger.Error("failed to decode acquiring bank response", "error", err)
		return nil, fmt.Errorf("decode acquiring bank response: %w", err)
	}

	c.logger.Info("acquiring bank verdict received",
		"authorized", bankResp.Authorized,
		"authorization_code", bankResp.AuthorizationCode)

	return &bankResp, nil
}
