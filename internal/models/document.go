package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProcessingPending    = "pending"
	ProcessingProcessing = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

const (
	PermissionRead  = "read"
	PermissionWrite = "write"
)

// Share is a per-user grant on a single document, independent of any
// collection membership the user may also hold.
type Share struct {
	User       primitive.ObjectID `json:"user" bson:"user"`
	Permission string             `json:"permission" bson:"permission"`
	SharedAt   time.Time          `json:"shared_at" bson:"shared_at"`
}

type DocumentMetadata struct {
	Author      string     `json:"author,omitempty" bson:"author,omitempty"`
	Subject     string     `json:"subject,omitempty" bson:"subject,omitempty"`
	Keywords    []string   `json:"keywords,omitempty" bson:"keywords,omitempty"`
	PageCount   int        `json:"page_count,omitempty" bson:"page_count,omitempty"`
	Language    string     `json:"language,omitempty" bson:"language,omitempty"`
	ExtractedAt *time.Time `json:"extracted_at,omitempty" bson:"extracted_at,omitempty"`
}

type Embeddings struct {
	Generated  bool   `json:"generated" bson:"generated"`
	Model      string `json:"model,omitempty" bson:"model,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty" bson:"chunk_count,omitempty"`
}

type Document struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Title            string              `json:"title" bson:"title"`
	OriginalFileName string              `json:"original_file_name" bson:"original_file_name"`
	FilePath         string              `json:"file_path" bson:"file_path"`
	MarkdownContent  string              `json:"markdown_content" bson:"markdown_content"`
	FileSize         int64               `json:"file_size" bson:"file_size"`
	MimeType         string              `json:"mime_type" bson:"mime_type"`
	UploadedBy       primitive.ObjectID  `json:"uploaded_by" bson:"uploaded_by"`
	CollectionID     *primitive.ObjectID `json:"collection_id,omitempty" bson:"collection_id,omitempty"`
	Metadata         DocumentMetadata    `json:"metadata" bson:"metadata"`
	ProcessingStatus string              `json:"processing_status" bson:"processing_status"`
	ProcessingError  string              `json:"processing_error,omitempty" bson:"processing_error,omitempty"`
	QdrantPointID    string              `json:"qdrant_point_id,omitempty" bson:"qdrant_point_id,omitempty"`
	Embeddings       Embeddings          `json:"embeddings" bson:"embeddings"`
	Tags             []string            `json:"tags" bson:"tags"`
	IsPublic         bool                `json:"is_public" bson:"is_public"`
	SharedWith       []Share             `json:"shared_with" bson:"shared_with"`
	DownloadCount    int64               `json:"download_count" bson:"download_count"`
	LastAccessed     time.Time           `json:"last_accessed" bson:"last_accessed"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

type DocumentUpdate struct {
	Title        *string             `json:"title,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	CollectionID *primitive.ObjectID `json:"collection_id,omitempty"`
	IsPublic     *bool               `json:"is_public,omitempty"`
}

// DocumentListOptions narrows an accessible-documents query.
type DocumentListOptions struct {
	Page         int
	Limit        int
	CollectionID *primitive.ObjectID
	Status       string
	Search       string
}
