package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"docpdf/internal/services"
	"docpdf/internal/utils"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for SendMessage")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), userID, documentID, payload.Message)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, reply)
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	messages, err := h.chatService.History(r.Context(), userID, documentID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
