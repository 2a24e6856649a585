package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cpop-ledger/internal/core/port"
	"cpop-ledger/internal/retry"
)

// HTTPTransfer calls an external token service to move funds out of a
// campaign pool. Requests carry the distribution id as Idempotency-Key, so
// retrying a request whose response was lost is safe.
type HTTPTransfer struct {
	endpoint string
	client   *http.Client
	policy   retry.Policy
	logger   *slog.Logger
}

// NewHTTPTransfer returns a client for the service at endpoint. timeout
// bounds each attempt; policy bounds the retries.
func NewHTTPTransfer(endpoint string, timeout time.Duration, policy retry.Policy, logger *slog.Logger) *HTTPTransfer {
	return &HTTPTransfer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		policy:   policy,
		logger:   logger,
	}
}

type transferBody struct {
	Mint      string `json:"mint"`
	Pool      string `json:"pool"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type receiptBody struct {
	Reference string `json:"reference"`
}

// Transfer posts the request, retrying network errors, 429 and 5xx
// responses. Any other non-2xx status fails immediately.
func (t *HTTPTransfer) Transfer(ctx context.Context, req port.TransferRequest) (port.TransferReceipt, error) {
	body, err := json.Marshal(transferBody{
		Mint:      req.Mint.String(),
		Pool:      req.Pool.String(),
		Recipient: req.Recipient.String(),
		Amount:    strconv.FormatUint(req.Amount, 10),
	})
	if err != nil {
		return port.TransferReceipt{}, err
	}
	return retry.Do(ctx, t.policy, t.logger, "token transfer", func(ctx context.Context) (port.TransferReceipt, error) {
		return t.post(ctx, req.IdempotencyKey, body)
	})
}

func (t *HTTPTransfer) post(ctx context.Context, key string, body []byte) (port.TransferReceipt, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/transfers", bytes.NewReader(body))
	if err != nil {
		return port.TransferReceipt{}, retry.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", key)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return port.TransferReceipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err = fmt.Errorf("token service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return port.TransferReceipt{}, err
		}
		return port.TransferReceipt{}, retry.Permanent(err)
	}

	var rb receiptBody
	if err = json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return port.TransferReceipt{}, retry.Permanent(fmt.Errorf("decode transfer receipt: %w", err))
	}
	if rb.Reference == "" {
		return port.TransferReceipt{}, retry.Permanent(fmt.Errorf("token service returned an empty reference"))
	}
	return port.TransferReceipt{Reference: rb.Reference}, nil
}
