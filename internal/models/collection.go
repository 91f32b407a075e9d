package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a non-owner user granted a role on a collection. The owner is
// never stored here; ownership lives in Collection.CreatedBy.
type Member struct {
	User    primitive.ObjectID `json:"user" bson:"user"`
	Role    string             `json:"role" bson:"role"`
	AddedAt time.Time          `json:"added_at" bson:"added_at"`
}

type CollectionSettings struct {
	AllowPublicDocuments bool `json:"allow_public_documents" bson:"allow_public_documents"`
	RequireApproval      bool `json:"require_approval" bson:"require_approval"`
	AutoTagging          bool `json:"auto_tagging" bson:"auto_tagging"`
}

type CollectionStats struct {
	DocumentCount int64     `json:"document_count" bson:"document_count"`
	TotalSize     int64     `json:"total_size" bson:"total_size"`
	LastActivity  time.Time `json:"last_activity" bson:"last_activity"`
}

type Collection struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Description         string             `json:"description" bson:"description"`
	CreatedBy           primitive.ObjectID `json:"created_by" bson:"created_by"`
	IsPublic            bool               `json:"is_public" bson:"is_public"`
	Color               string             `json:"color" bson:"color"`
	Icon                string             `json:"icon" bson:"icon"`
	Members             []Member           `json:"members" bson:"members"`
	Settings            CollectionSettings `json:"settings" bson:"settings"`
	Stats               CollectionStats    `json:"stats" bson:"stats"`
	ShareToken          string             `json:"share_token,omitempty" bson:"share_token,omitempty"`
	ShareTokenExpiresAt *time.Time         `json:"share_token_expires_at,omitempty" bson:"share_token_expires_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

const (
	DefaultCollectionColor = "#3B82F6"
	DefaultCollectionIcon  = "folder"
)

type CollectionCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsPublic    bool   `json:"is_public"`
}

type CollectionUpdate struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Color       *string             `json:"color,omitempty"`
	Icon        *string             `json:"icon,omitempty"`
	IsPublic    *bool               `json:"is_public,omitempty"`
	Settings    *CollectionSettings `json:"settings,omitempty"`
}
