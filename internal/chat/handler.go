package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AthenaOS24/AthenaOS/internal/analysis"
	"github.com/AthenaOS24/AthenaOS/internal/responder"
	"github.com/AthenaOS24/AthenaOS/internal/session"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

// maxRequestBody caps chat request bodies well above the sanitizer's input
// limit while keeping abusive payloads out.
const maxRequestBody = 64 * 1024

type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	UserInput string        `json:"user_input"`
	History   []historyItem `json:"history"`
	SessionID string        `json:"session_id"`
}

type chatResponse struct {
	Response       string          `json:"response"`
	Analysis       analysis.Result `json:"analysis"`
	ConversationID string          `json:"conversation_id"`
	Timestamp      string          `json:"timestamp"`
	WordCount      int             `json:"word_count"`
}

// POST /v1/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.UserInput == "" {
		respondError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	turn := TurnRequest{
		SessionID: req.SessionID,
		Input:     req.UserInput,
		History:   importedHistory(req.History),
	}

	result, err := h.service.ProcessTurn(r.Context(), turn)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrHarmfulInput):
		respondError(w, http.StatusBadRequest, "Input contains harmful content. Please focus on positive and constructive topics.")
		return
	case errors.Is(err, analysis.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, "Message is empty after cleaning. Please send some text.")
		return
	case errors.Is(err, responder.ErrRejected):
		respondError(w, http.StatusUnprocessableEntity, "The reply was blocked by the provider's safety filter. Please rephrase your message.")
		return
	default:
		h.logger.Error("chat turn failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Response:       result.Reply,
		Analysis:       result.Analysis,
		ConversationID: result.SessionID,
		Timestamp:      result.Timestamp.Format(time.RFC3339),
		WordCount:      result.WordCount,
	})
}

// GET /v1/sessions/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session id")
		return
	}

	history, err := h.service.History(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("history lookup failed", "error", err, "session_id", id)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"history":         history,
	})
}

// DELETE /v1/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session id")
		return
	}

	if err := h.service.DeleteSession(r.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
		h.logger.Error("session delete failed", "error", err, "session_id", id)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func importedHistory(items []historyItem) []session.Message {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]session.Message, 0, len(items))
	for _, item := range items {
		role := item.Role
		if role != session.RoleUser && role != session.RoleAssistant {
			continue
		}
		msgs = append(msgs, session.Message{Role: role, Content: item.Content})
	}
	return msgs
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
