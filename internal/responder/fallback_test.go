package responder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, req Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Zero(t, fallback.calls)
}

func TestFallbackClientUsesFallbackOnUnavailable(t *testing.T) {
	primary := &stubClient{err: fmt.Errorf("%w: connection refused", ErrUnavailable)}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClientDoesNotRetryRejections(t *testing.T) {
	primary := &stubClient{err: fmt.Errorf("%w: blocked", ErrRejected)}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Zero(t, fallback.calls)
}

func TestFallbackClientNoFallbackConfigured(t *testing.T) {
	wantErr := fmt.Errorf("%w: timeout", ErrUnavailable)
	primary := &stubClient{err: wantErr}
	client := NewFallbackClient(primary, nil, nil)

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFallbackClientBothFail(t *testing.T) {
	primary := &stubClient{err: fmt.Errorf("%w: down", ErrUnavailable)}
	fallbackErr := errors.New("also down")
	fallback := &stubClient{err: fallbackErr}
	client := NewFallbackClient(primary, fallback, nil)

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, fallbackErr)
}
