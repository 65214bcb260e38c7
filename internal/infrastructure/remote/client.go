// Package remote adapts the shop backend's REST API to the inventory store
// and waste ledger ports, for deployments where product quantities are owned
// by another service.
package remote

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// envelope mirrors the shop backend response wrapper
type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is the resty client shared by the remote adapters.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a client for the shop backend at cfg.BaseURL.
func NewClient(cfg config.InventoryStoreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.APIToken != "" {
		rc.SetAuthToken(cfg.APIToken)
	}

	return &Client{http: rc, logger: logger}
}

// check converts transport failures and non-2xx responses into domain errors.
// A 404 wraps shared.ErrNotFound; anything else is a dependency failure.
func (c *Client) check(operation string, resp *resty.Response, err error, apiErr *envelope[any]) error {
	if err != nil {
		c.logger.Warn("Shop backend request failed", zap.String("operation", operation), zap.Error(err))
		return shared.NewDependencyError(operation, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	detail := resp.Status()
	if apiErr != nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		detail = fmt.Sprintf("%s: %s", apiErr.Error.Code, apiErr.Error.Message)
	}
	c.logger.Warn("Shop backend returned an error",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode()),
		zap.String("detail", detail),
	)

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", operation, shared.ErrNotFound)
	}
	return shared.NewDependencyError(operation, fmt.Errorf("status %d: %s", resp.StatusCode(), detail))
}
