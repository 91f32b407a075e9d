package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"docpdf/internal/models"
	"docpdf/internal/services"
	"docpdf/internal/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload models.Register
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for RegisterUser")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, tokens, err := h.userService.RegisterUser(r.Context(), &payload)
	if err != nil {
		writeError(w, err, http.StatusConflict)
		return
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("User registered successfully")
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"user":          user.Sanitize(),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func (h *UserHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var creds models.Login
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for LoginUser")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, tokens, err := h.userService.LoginUser(r.Context(), &creds)
	if err != nil {
		writeError(w, err, http.StatusConflict)
		return
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"user":          user.Sanitize(),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// VerifyToken returns the account behind a valid access token. Auth
// middleware has already rejected anything unverifiable.
func (h *UserHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err, http.StatusConflict)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"valid": true, "user": user.Sanitize()})
}
