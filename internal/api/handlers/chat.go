package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hellogreencow/burch/internal/chat"
	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/logger"
)

// ChatHandler serves grounded diligence chat.
type ChatHandler struct {
	service *chat.Service
	logger  *logger.Logger
}

func NewChatHandler(service *chat.Service, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  log,
	}
}

// Chat answers one diligence exchange
// POST /v1/chat {brand_id, messages, mode}
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req contracts.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.service.Chat(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}
