package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
)

// GatewayConfig holds connection settings for the external payment gateway
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPPaymentGatewayClient talks to the payment gateway over its HTTP API.
// Transient failures map to ErrGatewayUnavailable so the poller retries them;
// the gateway's own rejections map to ErrGatewayRejected.
type HTTPPaymentGatewayClient struct {
	config GatewayConfig
	client *http.Client
	logger coreport.Logger
}

// NewHTTPPaymentGatewayClient creates a gateway client with the given settings
func NewHTTPPaymentGatewayClient(config GatewayConfig, logger coreport.Logger) *HTTPPaymentGatewayClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPaymentGatewayClient{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type createPaymentRequest struct {
	Amount string `json:"amount"`
}

type createPaymentResponse struct {
	Reference string    `json:"reference"`
	PayURL    string    `json:"payUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type paymentStatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// CreatePayment asks the gateway to issue a payment request for the amount
func (c *HTTPPaymentGatewayClient) CreatePayment(ctx context.Context, amount string) (*gatewayport.CreatedPayment, error) {
	body, err := json.Marshal(createPaymentRequest{Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Payment gateway unreachable", map[string]any{
			"error": err.Error(),
		})
		return nil, classifyTransportError(err, errs.ErrGatewayUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var created createPaymentResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return nil, fmt.Errorf("%w: malformed create response: %s", errs.ErrGatewayUnavailable, err.Error())
		}
		c.logger.Info("Payment request created at gateway", map[string]any{
			"external_reference": created.Reference,
		})
		return &gatewayport.CreatedPayment{
			ExternalReference: created.Reference,
			PayURL:            created.PayURL,
			ExpiresAt:         created.ExpiresAt,
		}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: gateway returned %d: %s", errs.ErrGatewayRejected, resp.StatusCode, readErrorBody(resp.Body))
	default:
		return nil, fmt.Errorf("%w: gateway returned %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}
}

// PollStatus fetches the current status of a previously created payment
func (c *HTTPPaymentGatewayClient) PollStatus(ctx context.Context, externalReference string) (gatewayport.PaymentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/payments/"+externalReference, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err, errs.ErrGatewayUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var status paymentStatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return "", fmt.Errorf("%w: malformed status response: %s", errs.ErrGatewayUnavailable, err.Error())
		}
		return parsePaymentStatus(status.Status)
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: unknown payment reference %s", errs.ErrGatewayRejected, externalReference)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("%w: gateway returned %d: %s", errs.ErrGatewayRejected, resp.StatusCode, readErrorBody(resp.Body))
	default:
		return "", fmt.Errorf("%w: gateway returned %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}
}

// setHeaders applies the shared request headers
func (c *HTTPPaymentGatewayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}

// parsePaymentStatus validates a gateway-reported status string
func parsePaymentStatus(raw string) (gatewayport.PaymentStatus, error) {
	switch gatewayport.PaymentStatus(raw) {
	case gatewayport.PaymentPending,
		gatewayport.PaymentCompleted,
		gatewayport.PaymentFailed,
		gatewayport.PaymentExpired:
		return gatewayport.PaymentStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown payment status %q", errs.ErrGatewayRejected, raw)
	}
}

// classifyTransportError maps transport-level failures to the transient sentinel
func classifyTransportError(err error, unavailable error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: request timed out: %s", unavailable, err.Error())
	}
	return fmt.Errorf("%w: %s", unavailable, err.Error())
}

// readErrorBody extracts a short error message from a response body
func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return string(data)
}
