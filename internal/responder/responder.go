package responder

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a chat turn in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a provider needs for one completion.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Response is the provider-neutral completion result.
type Response struct {
	Text       string
	StopReason string
}

// Client is the external responder capability. Implementations must map
// provider failures onto ErrUnavailable or ErrRejected so callers can react
// without knowing which vendor is behind the interface.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrUnavailable covers timeouts and connection failures; the caller recovers
// with fixed fallback text instead of surfacing the vendor error.
var ErrUnavailable = errors.New("responder: unavailable")

// ErrRejected means the vendor's safety filter refused the request. Surfaced
// to the caller as a distinct rejection, not a generic failure.
var ErrRejected = errors.New("responder: rejected by safety filter")
