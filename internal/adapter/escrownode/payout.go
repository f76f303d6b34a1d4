package escrownode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// PayoutClient submits release payments to the escrow node HTTP API.
type PayoutClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// payoutRequest mirrors JSON payload accepted by the escrow node.
type payoutRequest struct {
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
}

// NewPayoutClient creates an escrow node client with default timeout.
func NewPayoutClient(baseURL string, logger *slog.Logger) (*PayoutClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse escrow node url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("escrow node url must be absolute")
	}
	return &PayoutClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Payout asks the node to pay amount to destination. A conflict response
// means the node already holds this payment; redelivered settlements hit
// this path and must not fail.
func (c *PayoutClient) Payout(ctx context.Context, destination string, amount int64) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/payments")

	body, err := json.Marshal(payoutRequest{Destination: destination, Amount: amount})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusConflict:
		c.logger.Info("payout already submitted", slog.String("destination", destination))
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("payout request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)))
		return fmt.Errorf("escrow node error: %s", resp.Status)
	}
}
