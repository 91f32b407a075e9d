package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"docpdf/internal/models"
	"docpdf/internal/services"
	"docpdf/internal/utils"
)

type CollectionHandler struct {
	collectionService services.CollectionService
}

func NewCollectionHandler(collectionService services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

func (h *CollectionHandler) AddCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var payload models.CollectionCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for AddCollection")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	col, err := h.collectionService.AddCollection(r.Context(), userID, payload)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, col)
}

func (h *CollectionHandler) GetCollections(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	results, err := h.collectionService.GetCollections(r.Context(), userID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	log.Debug().Int("count", len(results)).Str("user_id", userID.Hex()).Msg("Collections retrieved")
	utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	detail, err := h.collectionService.GetCollection(r.Context(), userID, collectionID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload models.CollectionUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON payload for UpdateCollection")
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	col, err := h.collectionService.UpdateCollection(r.Context(), userID, collectionID, payload)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, col)
}

func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := h.collectionService.DeleteCollection(r.Context(), userID, collectionID); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Collection deleted successfully"})
}

func (h *CollectionHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	members, err := h.collectionService.ListMembers(r.Context(), userID, collectionID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, members)
}

func (h *CollectionHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for AddMember")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.collectionService.AddMember(r.Context(), userID, collectionID, payload.Email, payload.Role)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, member)
}

func (h *CollectionHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}
	targetID, err := utils.GetObjectIDFromVars(w, r, "userId")
	if err != nil {
		return
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for UpdateMemberRole")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.collectionService.UpdateMemberRole(r.Context(), userID, collectionID, targetID, payload.Role)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, member)
}

func (h *CollectionHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}
	targetID, err := utils.GetObjectIDFromVars(w, r, "userId")
	if err != nil {
		return
	}

	if err := h.collectionService.RemoveMember(r.Context(), userID, collectionID, targetID); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

func (h *CollectionHandler) GetShareInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	info, err := h.collectionService.GetShareInfo(r.Context(), userID, collectionID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, info)
}

func (h *CollectionHandler) ManageShareLink(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload struct {
		Action    string `json:"action"`
		ExpiresIn string `json:"expires_in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for ManageShareLink")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.collectionService.ManageShareLink(r.Context(), userID, collectionID, payload.Action, payload.ExpiresIn)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, info)
}

func (h *CollectionHandler) UpdateShareSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload struct {
		IsPublic *bool                      `json:"is_public"`
		Settings *models.CollectionSettings `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for UpdateShareSettings")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.collectionService.UpdateShareSettings(r.Context(), userID, collectionID, payload.IsPublic, payload.Settings)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, info)
}

func (h *CollectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	collectionID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	report, err := h.collectionService.GetStats(r.Context(), userID, collectionID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}
