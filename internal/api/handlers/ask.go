package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/fingertips/internal/api"
	"github.com/cloo-solutions/fingertips/internal/domain"
	"github.com/google/uuid"
)

// Answerer handles free-form questions for the operator endpoint.
type Answerer interface {
	Answer(ctx context.Context, question, conversationKey string) (string, error)
}

// AskHandler serves the operator question endpoint. A nil answerer means
// the assistant is not configured.
type AskHandler struct {
	answerer Answerer
}

// NewAskHandler creates an AskHandler.
func NewAskHandler(answerer Answerer) *AskHandler {
	return &AskHandler{answerer: answerer}
}

type AskRequest struct {
	Question string `json:"question"`
	// ConversationID groups follow-up questions; omit to start fresh.
	ConversationID string `json:"conversation_id"`
}

type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// Ask handles POST /ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.answerer == nil {
		api.HandleError(w, domain.ErrAssistantDisabled)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.HandleError(w, domain.ErrEmptyQuestion)
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question, conversationID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:         answer,
		ConversationID: conversationID,
	})
}
