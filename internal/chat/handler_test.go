package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AthenaOS24/AthenaOS/internal/analysis"
	"github.com/AthenaOS24/AthenaOS/internal/responder"
	"github.com/AthenaOS24/AthenaOS/internal/session"
)

func newTestRouter(t *testing.T, client responder.Client) (*chi.Mux, *session.MemoryStore) {
	t.Helper()
	svc, store := newTestService(t, client)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Post("/v1/chat", h.Chat)
	r.Get("/v1/sessions/{id}/history", h.History)
	r.Delete("/v1/sessions/{id}", h.DeleteSession)
	return r, store
}

func postChat(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubResponder{text: "What would help most right now?"})

	rec := postChat(t, router, map[string]any{"user_input": "Work was rough today"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "What would help most right now?", resp.Response)
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, 6, resp.WordCount)
	assert.Equal(t, analysis.UrgencyNone, resp.Analysis.UrgencyLevel)
}

func TestChatEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubResponder{text: "unused"})

	t.Run("missing user_input", func(t *testing.T) {
		rec := postChat(t, router, map[string]any{"session_id": "abc"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChatEndpointCrisis(t *testing.T) {
	stub := &stubResponder{text: "unused"}
	router, _ := newTestRouter(t, stub)

	rec := postChat(t, router, map[string]any{"user_input": "I can't go on anymore"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "IMMEDIATE HELP IS AVAILABLE")
	assert.Equal(t, analysis.UrgencyCrisis, resp.Analysis.UrgencyLevel)
	assert.Zero(t, stub.calls)
}

func TestChatEndpointResponderDownStillSucceeds(t *testing.T) {
	router, _ := newTestRouter(t, &stubResponder{err: responder.ErrUnavailable})

	rec := postChat(t, router, map[string]any{"user_input": "Work was rough today"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, FallbackReply, resp.Response)
	assert.Equal(t, "negative", resp.Analysis.Sentiment.Label)
}

func TestChatEndpointRejectedReply(t *testing.T) {
	router, _ := newTestRouter(t, &stubResponder{err: responder.ErrRejected})

	rec := postChat(t, router, map[string]any{"user_input": "Work was rough today"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	router, store := newTestRouter(t, &stubResponder{text: "ok"})
	require.NoError(t, store.Append(context.Background(), "s1",
		session.Message{Role: session.RoleUser, Content: "hey"},
		session.Message{Role: session.RoleAssistant, Content: "hi there"},
	))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ConversationID string            `json:"conversation_id"`
		History        []session.Message `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.ConversationID)
	require.Len(t, resp.History, 2)
	assert.Equal(t, "hey", resp.History[0].Content)
}

func TestHistoryEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubResponder{text: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/missing/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	router, store := newTestRouter(t, &stubResponder{text: "ok"})
	require.NoError(t, store.Append(context.Background(), "s1",
		session.Message{Role: session.RoleUser, Content: "hey"},
	))

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
