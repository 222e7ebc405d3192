package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hrassist-backend/internal/models"
	"hrassist-backend/internal/services"
)

type assistantService interface {
	Answer(ctx context.Context, question string, history []models.ChatMessage) (string, error)
}

type ChatHandler struct {
	assistant assistantService
}

func NewChatHandler(assistant assistantService) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Ask is the non-streaming chat endpoint: the full reply is returned in
// one JSON response. Clients wanting incremental output use the
// WebSocket channel instead.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	reply, err := h.assistant.Answer(r.Context(), req.Message, req.History)
	if err != nil {
		if vErr, ok := err.(*services.ValidationError); ok {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", vErr.Fields, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to get AI response", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
