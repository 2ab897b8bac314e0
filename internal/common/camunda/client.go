// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"lead-automation/internal/common/config"
	"lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
)

const serviceName = "zeebe"

// Client wraps the Zeebe gRPC client.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	ConnectAttempts        int
	ConnectBackoff         time.Duration
}

// ConfigFromApp derives the client settings from the application config.
func ConfigFromApp(cfg config.CamundaConfig) *ClientConfig {
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      timeout,
		ConnectAttempts:        10,
		ConnectBackoff:         2 * time.Second,
	}
}

// NewClientWithConfig dials the gateway and waits for a topology answer.
// Connecting is retried with exponential backoff; job handling never is.
func NewClientWithConfig(ctx context.Context, cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.ConnectAttempts < 1 {
		cfg.ConnectAttempts = 1
	}

	var lastErr error
	delay := cfg.ConnectBackoff
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		c, err := dial(ctx, cfg)
		if err == nil {
			return c, nil
		}
		lastErr = err

		if attempt == cfg.ConnectAttempts {
			break
		}
		log.Warn("zeebe connection failed, retrying", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": cfg.ConnectAttempts,
			"nextRetryIn": delay.String(),
			"error":       err.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, errors.NewTransportError(serviceName, ctx.Err())
		}
		delay *= 2
	}

	return nil, lastErr
}

func dial(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, errors.NewTransportError(serviceName, fmt.Errorf("create client: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, mapZeebeError(err, "topology")
	}

	return &Client{client: zeebeClient, config: cfg}, nil
}

// GetClient returns the raw Zeebe client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return mapZeebeError(err, "topology")
	}
	return nil
}

// mapZeebeError folds gRPC failures into the adapter error kinds.
func mapZeebeError(err error, operation string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	wrapped := fmt.Errorf("zeebe operation '%s' failed: %s", operation, msg)

	switch {
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "unavailable"),
		strings.Contains(lower, "unreachable"),
		strings.Contains(lower, "deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return errors.NewTransportError(serviceName, wrapped)
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "unauthenticated"):
		return errors.NewProtocolError(serviceName, 401, wrapped.Error())
	case strings.Contains(lower, "not found"):
		return errors.NewProtocolError(serviceName, 404, wrapped.Error())
	default:
		return errors.NewProtocolError(serviceName, 500, wrapped.Error())
	}
}
