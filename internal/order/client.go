package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/circuitbreaker"
	"github.com/jwalitptl/pharmacy-api/pkg/errors"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

// Confirmation is the order service's acknowledgement of a created order.
type Confirmation struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
}

// Creator submits assembled orders to the external order service.
type Creator interface {
	Create(ctx context.Context, req model.OrderRequest) (*Confirmation, error)
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{Timeout: 10 * time.Second}
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "order-service",
			MaxFailures: 3,
			Timeout:     20 * time.Second,
		}),
		logger: log.WithComponent("order-client"),
	}
}

type createResponse struct {
	Success bool          `json:"success"`
	Data    *Confirmation `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Create submits the order. Service error messages are surfaced verbatim so
// the user sees exactly what the order service rejected; there is no
// automatic retry.
func (c *Client) Create(ctx context.Context, orderReq model.OrderRequest) (*Confirmation, error) {
	payload, err := json.Marshal(orderReq)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to marshal order request: %w", err))
	}

	var confirmation *Confirmation
	callErr := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build order request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("order service unreachable: %v", err)
		}
		defer resp.Body.Close()

		var body createResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode order response: %w", err)
		}
		if !body.Success || resp.StatusCode >= http.StatusBadRequest {
			if body.Message != "" {
				return fmt.Errorf("%s", body.Message)
			}
			return fmt.Errorf("order service returned status %d", resp.StatusCode)
		}

		confirmation = body.Data
		return nil
	})
	if callErr != nil {
		return nil, errors.NewSubmission(callErr.Error(), callErr)
	}
	if confirmation == nil {
		confirmation = &Confirmation{}
	}

	return confirmation, nil
}
