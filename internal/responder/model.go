package responder

import "context"

// modelDefault fills in a model id on requests that omit one, so callers
// never need to know which backend they are talking to.
type modelDefault struct {
	client Client
	model  string
}

// WithModel wraps client so requests without an explicit model use modelID.
func WithModel(client Client, modelID string) Client {
	if modelID == "" {
		return client
	}
	return &modelDefault{client: client, model: modelID}
}

func (m *modelDefault) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = m.model
	}
	return m.client.Complete(ctx, req)
}
