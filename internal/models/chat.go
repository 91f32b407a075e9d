package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ChatSession holds the message history between one user and one document.
type ChatSession struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DocumentID primitive.ObjectID `json:"document_id" bson:"document_id"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Messages   []ChatMessage      `json:"messages" bson:"messages"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}
