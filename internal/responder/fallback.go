package responder

import (
	"context"
	"errors"

	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

// FallbackClient wraps a primary responder with a fallback provider.
// If the primary fails with ErrUnavailable, it retries with the fallback.
// Safety rejections are never retried: a second vendor should not be asked
// to answer a request the first one refused.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *logging.Logger
}

// NewFallbackClient creates a fallback-enabled responder client.
// If fallback is nil, the client will only use the primary provider.
func NewFallbackClient(primary, fallback Client, logger *logging.Logger) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete sends a completion request to the primary responder.
// If it is unavailable and a fallback is configured, retries with the fallback.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	if errors.Is(err, ErrRejected) {
		return Response{}, err
	}

	c.logger.Warn("primary responder failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)

	if c.fallback == nil {
		return Response{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback responder also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback responder succeeded after primary failure")
	return fallbackResp, nil
}
