package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"docpdf/internal/access"
	"docpdf/internal/metrics"
	"docpdf/internal/models"
	"docpdf/internal/repositories"
)

const maxUploadSize = 50 << 20 // 50 MB

// UploadInput carries one multipart file out of the handler layer.
type UploadInput struct {
	Reader       io.Reader
	FileName     string
	Size         int64
	ContentType  string
	Title        string
	Tags         []string
	CollectionID *primitive.ObjectID
	IsPublic     bool
}

type DocumentPage struct {
	Documents []models.Document `json:"documents"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

// DocumentService defines the interface for document lifecycle operations.
type DocumentService interface {
	Upload(ctx context.Context, userID primitive.ObjectID, input UploadInput) (*models.Document, error)
	List(ctx context.Context, userID primitive.ObjectID, opts models.DocumentListOptions) (*DocumentPage, error)
	Get(ctx context.Context, userID, documentID primitive.ObjectID) (*models.Document, error)
	Update(ctx context.Context, userID, documentID primitive.ObjectID, payload models.DocumentUpdate) (*models.Document, error)
	Delete(ctx context.Context, userID, documentID primitive.ObjectID) error
	Download(ctx context.Context, userID, documentID primitive.ObjectID) (*models.Document, io.ReadCloser, error)
}

type documentService struct {
	documentRepo   repositories.DocumentRepository
	collectionRepo repositories.CollectionRepository
	userRepo       repositories.UserRepository
	storagePath    string
}

func NewDocumentService(documentRepo repositories.DocumentRepository, collectionRepo repositories.CollectionRepository, userRepo repositories.UserRepository) DocumentService {
	storagePath := os.Getenv("PDF_STORAGE_PATH")
	if storagePath == "" {
		storagePath = "/tmp/pdfs"
	}
	return &documentService{
		documentRepo:   documentRepo,
		collectionRepo: collectionRepo,
		userRepo:       userRepo,
		storagePath:    storagePath,
	}
}

func (s *documentService) loadDocument(ctx context.Context, documentID primitive.ObjectID) (*models.Document, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, access.NotFound("document_id", "document not found")
		}
		return nil, err
	}
	return doc, nil
}

// requireCollectionEditor checks that the user can file documents into the
// given collection.
func (s *documentService) requireCollectionEditor(ctx context.Context, userID, collectionID primitive.ObjectID) error {
	col, err := s.collectionRepo.FindByID(ctx, collectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return access.NotFound("collection_id", "collection not found")
		}
		return err
	}
	if !access.HasAccess(col, userID, access.RoleEditor) {
		return access.Forbidden("collection_id", "editor access required to add documents to this collection")
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, userID primitive.ObjectID, input UploadInput) (*models.Document, error) {
	if input.FileName == "" {
		return nil, access.InvalidArgument("file", "no file provided")
	}
	if !strings.EqualFold(filepath.Ext(input.FileName), ".pdf") && input.ContentType != "application/pdf" {
		return nil, access.InvalidArgument("file", "only PDF files are accepted")
	}
	if input.Size > maxUploadSize {
		return nil, access.InvalidArgument("file", "file exceeds the 50MB limit")
	}

	if input.CollectionID != nil {
		if err := s.requireCollectionEditor(ctx, userID, *input.CollectionID); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare storage directory: %w", err)
	}

	storedName := uuid.NewString() + ".pdf"
	fullPath := filepath.Join(s.storagePath, storedName)

	out, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(input.Reader, maxUploadSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written > maxUploadSize {
		os.Remove(fullPath)
		return nil, access.InvalidArgument("file", "file exceeds the 50MB limit")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(input.FileName, filepath.Ext(input.FileName))
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	doc := &models.Document{
		ID:               primitive.NewObjectID(),
		Title:            title,
		OriginalFileName: filepath.Base(input.FileName),
		FilePath:         fullPath,
		FileSize:         written,
		MimeType:         "application/pdf",
		UploadedBy:       userID,
		CollectionID:     input.CollectionID,
		ProcessingStatus: models.ProcessingPending,
		Tags:             tags,
		IsPublic:         input.IsPublic,
		SharedWith:       []models.Share{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.documentRepo.Create(ctx, doc); err != nil {
		os.Remove(fullPath)
		return nil, err
	}

	metrics.DocumentUploadedTotal.Inc()
	log.Info().
		Str("user_id", userID.Hex()).
		Str("document_id", doc.ID.Hex()).
		Int64("size", written).
		Msg("Document uploaded")
	return doc, nil
}

func (s *documentService) List(ctx context.Context, userID primitive.ObjectID, opts models.DocumentListOptions) (*DocumentPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}

	docs, total, err := s.documentRepo.FindAccessible(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{Documents: docs, Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID primitive.ObjectID) (*models.Document, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !access.DocumentHasAccess(doc, userID, models.PermissionRead) {
		return nil, access.Forbidden("document_id", "no access to this document")
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, userID, documentID primitive.ObjectID, payload models.DocumentUpdate) (*models.Document, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyDocument(doc, user) {
		return nil, access.Forbidden("document_id", "only the uploader can modify this document")
	}

	updateFields := bson.M{}
	if payload.Title != nil {
		title := strings.TrimSpace(*payload.Title)
		if title == "" {
			return nil, access.InvalidArgument("title", "title cannot be empty")
		}
		updateFields["title"] = title
	}
	if payload.Tags != nil {
		updateFields["tags"] = payload.Tags
	}
	if payload.CollectionID != nil {
		if err := s.requireCollectionEditor(ctx, userID, *payload.CollectionID); err != nil {
			return nil, err
		}
		updateFields["collection_id"] = *payload.CollectionID
	}
	if payload.IsPublic != nil {
		updateFields["is_public"] = *payload.IsPublic
	}

	if len(updateFields) == 0 {
		return nil, access.InvalidArgument("body", "no fields to update")
	}
	updateFields["updated_at"] = time.Now()

	if _, err := s.documentRepo.Update(ctx, documentID, updateFields); err != nil {
		return nil, err
	}
	return s.loadDocument(ctx, documentID)
}

func (s *documentService) Delete(ctx context.Context, userID, documentID primitive.ObjectID) error {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !access.CanModifyDocument(doc, user) {
		return access.Forbidden("document_id", "only the uploader can delete this document")
	}

	if _, err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", doc.FilePath).Msg("Failed to remove document file")
		}
	}

	log.Info().Str("user_id", userID.Hex()).Str("document_id", documentID.Hex()).Msg("Document deleted")
	return nil
}

func (s *documentService) Download(ctx context.Context, userID, documentID primitive.ObjectID) (*models.Document, io.ReadCloser, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if !access.DocumentHasAccess(doc, userID, models.PermissionRead) {
		return nil, nil, access.Forbidden("document_id", "no access to this document")
	}

	file, err := os.Open(doc.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, access.NotFound("document_id", "stored file is missing")
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	if err := s.documentRepo.RecordDownload(ctx, documentID, time.Now()); err != nil {
		log.Warn().Err(err).Str("document_id", documentID.Hex()).Msg("Failed to record download")
	}
	metrics.DocumentDownloadedTotal.Inc()
	return doc, file, nil
}
