package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/models"
	"docpdf/internal/services"
	"docpdf/internal/utils"
)

type DocumentHandler struct {
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 51<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		log.Warn().Err(err).Msg("Failed to parse multipart form")
		utils.SendJSONError(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	input := services.UploadInput{
		Reader:      file,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Title:       r.FormValue("title"),
		IsPublic:    r.FormValue("is_public") == "true",
	}
	if tags := r.FormValue("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				input.Tags = append(input.Tags, t)
			}
		}
	}
	if raw := r.FormValue("collection_id"); raw != "" {
		collectionID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.SendJSONError(w, "Invalid collection id", http.StatusBadRequest)
			return
		}
		input.CollectionID = &collectionID
	}

	doc, err := h.documentService.Upload(r.Context(), userID, input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	query := r.URL.Query()
	opts := models.DocumentListOptions{
		Status: query.Get("status"),
		Search: query.Get("search"),
	}
	opts.Page, _ = strconv.Atoi(query.Get("page"))
	opts.Limit, _ = strconv.Atoi(query.Get("limit"))
	if raw := query.Get("collection"); raw != "" {
		collectionID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.SendJSONError(w, "Invalid collection id", http.StatusBadRequest)
			return
		}
		opts.CollectionID = &collectionID
	}

	page, err := h.documentService.List(r.Context(), userID, opts)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	doc, err := h.documentService.Get(r.Context(), userID, documentID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var payload models.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON payload for UpdateDocument")
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.documentService.Update(r.Context(), userID, documentID, payload)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := h.documentService.Delete(r.Context(), userID, documentID); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}
	documentID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	doc, file, err := h.documentService.Download(r.Context(), userID, documentID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalFileName))
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	if _, err := io.Copy(w, file); err != nil {
		log.Warn().Err(err).Str("document_id", documentID.Hex()).Msg("Download interrupted")
	}
}
