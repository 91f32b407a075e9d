package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"docpdf/internal/access"
	"docpdf/internal/metrics"
	"docpdf/internal/models"
	"docpdf/internal/repositories"
)

const chatHistoryLimit = 100

// ChatService defines the interface for per-document chat sessions. Replies
// are canned for now; retrieval-backed answers land once document
// processing produces embeddings.
type ChatService interface {
	SendMessage(ctx context.Context, userID, documentID primitive.ObjectID, content string) (*models.ChatMessage, error)
	History(ctx context.Context, userID, documentID primitive.ObjectID) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo     repositories.ChatRepository
	documentRepo repositories.DocumentRepository
}

func NewChatService(chatRepo repositories.ChatRepository, documentRepo repositories.DocumentRepository) ChatService {
	return &chatService{chatRepo: chatRepo, documentRepo: documentRepo}
}

func (s *chatService) requireReadableDocument(ctx context.Context, userID, documentID primitive.ObjectID) (*models.Document, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, access.NotFound("document_id", "document not found")
		}
		return nil, err
	}
	if !access.DocumentHasAccess(doc, userID, models.PermissionRead) {
		return nil, access.Forbidden("document_id", "no access to this document")
	}
	return doc, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID, documentID primitive.ObjectID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, access.InvalidArgument("message", "message cannot be empty")
	}

	doc, err := s.requireReadableDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	session, err := s.chatRepo.FindSession(ctx, documentID, userID)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
		now := time.Now()
		session = &models.ChatSession{
			ID:         primitive.NewObjectID(),
			DocumentID: documentID,
			UserID:     userID,
			Messages:   []models.ChatMessage{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	now := time.Now()
	session.Messages = append(session.Messages, models.ChatMessage{
		Role:      models.ChatRoleUser,
		Content:   content,
		Timestamp: now,
	})
	reply := models.ChatMessage{
		Role:      models.ChatRoleAssistant,
		Content:   fmt.Sprintf("Document Q&A for %q is not available yet. Your question has been saved and will be answered once the document finishes processing.", doc.Title),
		Timestamp: now,
	}
	session.Messages = append(session.Messages, reply)

	// Keep sessions bounded so a single document chat cannot grow without
	// limit.
	if len(session.Messages) > chatHistoryLimit {
		session.Messages = session.Messages[len(session.Messages)-chatHistoryLimit:]
	}
	session.UpdatedAt = now

	if err := s.chatRepo.UpsertSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.ChatMessagesTotal.Inc()
	log.Debug().
		Str("user_id", userID.Hex()).
		Str("document_id", documentID.Hex()).
		Int("messages", len(session.Messages)).
		Msg("Chat message stored")
	return &reply, nil
}

func (s *chatService) History(ctx context.Context, userID, documentID primitive.ObjectID) ([]models.ChatMessage, error) {
	if _, err := s.requireReadableDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	session, err := s.chatRepo.FindSession(ctx, documentID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []models.ChatMessage{}, nil
		}
		return nil, err
	}
	return session.Messages, nil
}
