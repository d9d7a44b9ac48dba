package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
)

// CasinoConfig holds connection settings for the casino backend
type CasinoConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPCasinoClient talks to the casino backend over its HTTP API. Every
// credit push carries the transaction id as idempotency key so the backend
// can deduplicate retries.
type HTTPCasinoClient struct {
	config CasinoConfig
	client *http.Client
	logger coreport.Logger
}

// NewHTTPCasinoClient creates a casino client with the given settings
func NewHTTPCasinoClient(config CasinoConfig, logger coreport.Logger) *HTTPCasinoClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCasinoClient{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type creditRequest struct {
	Amount string `json:"amount"`
}

type creditResponse struct {
	Completed bool   `json:"completed"`
	Reason    string `json:"reason"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

// CreditBalance pushes a credit to the given casino account
func (c *HTTPCasinoClient) CreditBalance(ctx context.Context, accountRef string, amount string, idempotencyKey string) (*gatewayport.CreditResult, error) {
	body, err := json.Marshal(creditRequest{Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	url := c.config.BaseURL + "/accounts/" + accountRef + "/credits"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}
	c.setHeaders(req)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Casino backend unreachable", map[string]any{
			"account_ref": accountRef,
			"error":       err.Error(),
		})
		return nil, classifyTransportError(err, errs.ErrCasinoUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result creditResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: malformed credit response: %s", errs.ErrCasinoUnavailable, err.Error())
		}
		return &gatewayport.CreditResult{
			Completed: result.Completed,
			Reason:    result.Reason,
		}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: unknown casino account %s", errs.ErrCasinoRejected, accountRef)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: casino returned %d: %s", errs.ErrCasinoRejected, resp.StatusCode, readErrorBody(resp.Body))
	default:
		return nil, fmt.Errorf("%w: casino returned %d", errs.ErrCasinoUnavailable, resp.StatusCode)
	}
}

// GetBalance queries the current casino account balance
func (c *HTTPCasinoClient) GetBalance(ctx context.Context, accountRef string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/accounts/"+accountRef+"/balance", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err, errs.ErrCasinoUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result balanceResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", fmt.Errorf("%w: malformed balance response: %s", errs.ErrCasinoUnavailable, err.Error())
		}
		return result.Balance, nil
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: unknown casino account %s", errs.ErrCasinoRejected, accountRef)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("%w: casino returned %d: %s", errs.ErrCasinoRejected, resp.StatusCode, readErrorBody(resp.Body))
	default:
		return "", fmt.Errorf("%w: casino returned %d", errs.ErrCasinoUnavailable, resp.StatusCode)
	}
}

// setHeaders applies the shared request headers
func (c *HTTPCasinoClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}
