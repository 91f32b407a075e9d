package services

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"docpdf/internal/access"
	"docpdf/internal/metrics"
	"docpdf/internal/models"
	"docpdf/internal/repositories"
)

// CollectionWithCount decorates a collection with the number of documents
// the requesting user can see inside it.
type CollectionWithCount struct {
	models.Collection
	DocumentCount int64 `json:"document_count"`
}

type CollectionDetail struct {
	models.Collection
	DocumentCount   int64             `json:"document_count"`
	RecentDocuments []models.Document `json:"recent_documents"`
}

// MemberEntry is one row of the members listing. The owner appears first
// with the synthetic owner role.
type MemberEntry struct {
	User    primitive.ObjectID `json:"user"`
	Role    string             `json:"role"`
	AddedAt time.Time          `json:"added_at"`
	IsOwner bool               `json:"is_owner"`
}

type ShareInfo struct {
	IsPublic     bool                      `json:"is_public"`
	ShareToken   string                    `json:"share_token,omitempty"`
	ShareURL     string                    `json:"share_url,omitempty"`
	ExpiresAt    *time.Time                `json:"expires_at,omitempty"`
	TotalMembers int                       `json:"total_members"`
	Settings     models.CollectionSettings `json:"settings"`
}

type CollectionStatsReport struct {
	Stats           repositories.CollectionDocumentStats `json:"stats"`
	UploadsOverTime []repositories.UploadsPerDay         `json:"uploads_over_time"`
	TopContributors []repositories.Contributor           `json:"top_contributors"`
}

const (
	shareActionGenerate   = "generate"
	shareActionRegenerate = "regenerate"
	shareActionRevoke     = "revoke"
)

// CollectionService defines the interface for collection-related business
// logic, membership and sharing included.
type CollectionService interface {
	AddCollection(ctx context.Context, userID primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error)
	GetCollections(ctx context.Context, userID primitive.ObjectID) ([]CollectionWithCount, error)
	GetCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionDetail, error)
	UpdateCollection(ctx context.Context, userID, collectionID primitive.ObjectID, payload models.CollectionUpdate) (*models.Collection, error)
	DeleteCollection(ctx context.Context, userID, collectionID primitive.ObjectID) error

	ListMembers(ctx context.Context, userID, collectionID primitive.ObjectID) ([]MemberEntry, error)
	AddMember(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error)
	UpdateMemberRole(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID, role string) (*models.Member, error)
	RemoveMember(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID) error

	GetShareInfo(ctx context.Context, callerID, collectionID primitive.ObjectID) (*ShareInfo, error)
	ManageShareLink(ctx context.Context, callerID, collectionID primitive.ObjectID, action, expiresIn string) (*ShareInfo, error)
	UpdateShareSettings(ctx context.Context, callerID, collectionID primitive.ObjectID, isPublic *bool, settings *models.CollectionSettings) (*ShareInfo, error)

	GetStats(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionStatsReport, error)
}

type collectionService struct {
	collectionRepo repositories.CollectionRepository
	documentRepo   repositories.DocumentRepository
	userRepo       repositories.UserRepository
	cache          *redis.Client
}

// NewCollectionService builds the collection service. cache may be nil, in
// which case stats are recomputed on every request.
func NewCollectionService(collectionRepo repositories.CollectionRepository, documentRepo repositories.DocumentRepository, userRepo repositories.UserRepository, cache *redis.Client) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		documentRepo:   documentRepo,
		userRepo:       userRepo,
		cache:          cache,
	}
}

// load fetches the collection and translates a missing record into the
// resolver's NotFound kind.
func (s *collectionService) load(ctx context.Context, collectionID primitive.ObjectID) (*models.Collection, error) {
	col, err := s.collectionRepo.FindByID(ctx, collectionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, access.NotFound("collection_id", "collection not found")
		}
		return nil, err
	}
	return col, nil
}

func (s *collectionService) AddCollection(ctx context.Context, userID primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, access.InvalidArgument("name", "collection name is required")
	}

	if _, err := s.collectionRepo.FindByOwnerAndName(ctx, userID, name, nil); err == nil {
		return nil, access.Conflict("name", "a collection with this name already exists")
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	color := payload.Color
	if color == "" {
		color = models.DefaultCollectionColor
	}

	now := time.Now()
	col := &models.Collection{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: payload.Description,
		CreatedBy:   userID,
		IsPublic:    payload.IsPublic,
		Color:       color,
		Icon:        models.DefaultCollectionIcon,
		Members:     []models.Member{},
		Settings:    models.CollectionSettings{AutoTagging: true},
		Stats:       models.CollectionStats{LastActivity: now},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.collectionRepo.Create(ctx, col); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, access.Conflict("name", "a collection with this name already exists")
		}
		return nil, err
	}

	metrics.CollectionCreatedTotal.Inc()
	log.Info().Str("user_id", userID.Hex()).Str("collection_id", col.ID.Hex()).Str("name", col.Name).Msg("Collection created")
	return col, nil
}

func (s *collectionService) GetCollections(ctx context.Context, userID primitive.ObjectID) ([]CollectionWithCount, error) {
	cols, err := s.collectionRepo.FindAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]CollectionWithCount, 0, len(cols))
	for _, col := range cols {
		count, err := s.documentRepo.CountAccessibleInCollection(ctx, userID, col.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, CollectionWithCount{Collection: col, DocumentCount: count})
	}
	return results, nil
}

func (s *collectionService) GetCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionDetail, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, userID, access.RoleViewer) {
		return nil, access.Forbidden("collection_id", "no access to this collection")
	}

	count, err := s.documentRepo.CountAccessibleInCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	recent, err := s.documentRepo.FindRecentInCollection(ctx, userID, collectionID, 5)
	if err != nil {
		return nil, err
	}

	return &CollectionDetail{Collection: *col, DocumentCount: count, RecentDocuments: recent}, nil
}

func (s *collectionService) UpdateCollection(ctx context.Context, userID, collectionID primitive.ObjectID, payload models.CollectionUpdate) (*models.Collection, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, userID, access.RoleEditor) {
		return nil, access.Forbidden("collection_id", "editor access required to modify this collection")
	}

	updateFields := bson.M{}
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return nil, access.InvalidArgument("name", "collection name is required")
		}
		if _, err := s.collectionRepo.FindByOwnerAndName(ctx, col.CreatedBy, name, &collectionID); err == nil {
			return nil, access.Conflict("name", "a collection with this name already exists")
		} else if err != mongo.ErrNoDocuments {
			return nil, err
		}
		updateFields["name"] = name
	}
	if payload.Description != nil {
		updateFields["description"] = *payload.Description
	}
	if payload.Color != nil {
		updateFields["color"] = *payload.Color
	}
	if payload.Icon != nil {
		updateFields["icon"] = *payload.Icon
	}
	if payload.IsPublic != nil {
		updateFields["is_public"] = *payload.IsPublic
	}
	if payload.Settings != nil {
		updateFields["settings"] = *payload.Settings
	}

	if len(updateFields) == 0 {
		return nil, access.InvalidArgument("body", "no fields to update")
	}
	updateFields["updated_at"] = time.Now()

	if _, err := s.collectionRepo.Update(ctx, collectionID, updateFields); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, access.Conflict("name", "a collection with this name already exists")
		}
		return nil, err
	}

	log.Info().Str("user_id", userID.Hex()).Str("collection_id", collectionID.Hex()).Msg("Collection updated")
	return s.load(ctx, collectionID)
}

func (s *collectionService) DeleteCollection(ctx context.Context, userID, collectionID primitive.ObjectID) error {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return err
	}

	docCount, err := s.documentRepo.CountInCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := access.CanDeleteCollection(col, userID, docCount); err != nil {
		return err
	}

	if _, err := s.collectionRepo.Delete(ctx, collectionID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.Hex()).Str("collection_id", collectionID.Hex()).Msg("Collection deleted")
	return nil
}

func (s *collectionService) ListMembers(ctx context.Context, userID, collectionID primitive.ObjectID) ([]MemberEntry, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, userID, access.RoleViewer) {
		return nil, access.Forbidden("collection_id", "no access to this collection")
	}

	entries := make([]MemberEntry, 0, len(col.Members)+1)
	entries = append(entries, MemberEntry{
		User:    col.CreatedBy,
		Role:    string(access.RoleOwner),
		AddedAt: col.CreatedAt,
		IsOwner: true,
	})
	for _, m := range col.Members {
		entries = append(entries, MemberEntry{User: m.User, Role: m.Role, AddedAt: m.AddedAt})
	}
	return entries, nil
}

func (s *collectionService) AddMember(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error) {
	if email == "" {
		return nil, access.InvalidArgument("email", "email is required")
	}

	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, access.NotFound("email", "no user with this email")
		}
		return nil, err
	}

	if err := access.AddMember(col, callerID, target.ID, role, time.Now()); err != nil {
		return nil, err
	}
	if err := s.collectionRepo.ReplaceMembers(ctx, col); err != nil {
		return nil, err
	}

	member := col.Members[len(col.Members)-1]
	log.Info().
		Str("collection_id", collectionID.Hex()).
		Str("caller_id", callerID.Hex()).
		Str("member_id", target.ID.Hex()).
		Str("role", role).
		Msg("Member added to collection")
	return &member, nil
}

func (s *collectionService) UpdateMemberRole(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID, role string) (*models.Member, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	if err := access.UpdateMemberRole(col, callerID, targetID, role, time.Now()); err != nil {
		return nil, err
	}
	if err := s.collectionRepo.ReplaceMembers(ctx, col); err != nil {
		return nil, err
	}

	for i := range col.Members {
		if col.Members[i].User == targetID {
			log.Info().
				Str("collection_id", collectionID.Hex()).
				Str("member_id", targetID.Hex()).
				Str("role", role).
				Msg("Member role updated")
			return &col.Members[i], nil
		}
	}
	return nil, access.NotFound("user_id", "member not found")
}

func (s *collectionService) RemoveMember(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID) error {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return err
	}

	if err := access.RemoveMember(col, callerID, targetID, time.Now()); err != nil {
		return err
	}
	if err := s.collectionRepo.ReplaceMembers(ctx, col); err != nil {
		return err
	}

	log.Info().
		Str("collection_id", collectionID.Hex()).
		Str("caller_id", callerID.Hex()).
		Str("member_id", targetID.Hex()).
		Msg("Member removed from collection")
	return nil
}

func (s *collectionService) shareInfo(col *models.Collection) *ShareInfo {
	return &ShareInfo{
		IsPublic:     col.IsPublic,
		ShareToken:   col.ShareToken,
		ShareURL:     access.ShareURL(os.Getenv("APP_URL"), col.ShareToken),
		ExpiresAt:    col.ShareTokenExpiresAt,
		TotalMembers: len(col.Members) + 1, // +1 for the owner
		Settings:     col.Settings,
	}
}

func (s *collectionService) GetShareInfo(ctx context.Context, callerID, collectionID primitive.ObjectID) (*ShareInfo, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, callerID, access.RoleEditor) {
		return nil, access.Forbidden("collection_id", "editor access required to manage sharing")
	}
	return s.shareInfo(col), nil
}

func (s *collectionService) ManageShareLink(ctx context.Context, callerID, collectionID primitive.ObjectID, action, expiresIn string) (*ShareInfo, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch action {
	case shareActionGenerate, shareActionRegenerate:
		if err := access.GenerateShareToken(col, callerID, expiresIn, now); err != nil {
			return nil, err
		}
		metrics.ShareLinkGeneratedTotal.Inc()
	case shareActionRevoke:
		if err := access.RevokeShareToken(col, callerID, now); err != nil {
			return nil, err
		}
	default:
		return nil, access.InvalidArgument("action", "action must be generate, regenerate or revoke")
	}

	if err := s.collectionRepo.SetShareToken(ctx, col); err != nil {
		return nil, err
	}

	log.Info().
		Str("collection_id", collectionID.Hex()).
		Str("caller_id", callerID.Hex()).
		Str("action", action).
		Msg("Share link updated")
	return s.shareInfo(col), nil
}

func (s *collectionService) UpdateShareSettings(ctx context.Context, callerID, collectionID primitive.ObjectID, isPublic *bool, settings *models.CollectionSettings) (*ShareInfo, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, callerID, access.RoleEditor) {
		return nil, access.Forbidden("collection_id", "editor access required to manage sharing")
	}

	updateFields := bson.M{"updated_at": time.Now()}
	if isPublic != nil {
		updateFields["is_public"] = *isPublic
		col.IsPublic = *isPublic
	}
	if settings != nil {
		updateFields["settings"] = *settings
		col.Settings = *settings
	}

	if _, err := s.collectionRepo.Update(ctx, collectionID, updateFields); err != nil {
		return nil, err
	}
	return s.shareInfo(col), nil
}

const statsCacheTTL = time.Minute

func (s *collectionService) statsCacheKey(userID, collectionID primitive.ObjectID) string {
	// Stats are scoped to viewer visibility, so the key carries both ids.
	return "collection_stats:" + collectionID.Hex() + ":" + userID.Hex()
}

func (s *collectionService) GetStats(ctx context.Context, userID, collectionID primitive.ObjectID) (*CollectionStatsReport, error) {
	col, err := s.load(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess(col, userID, access.RoleViewer) {
		return nil, access.Forbidden("collection_id", "no access to this collection")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.statsCacheKey(userID, collectionID)).Bytes()
		if err == nil {
			var report CollectionStatsReport
			if err := json.Unmarshal(cached, &report); err == nil {
				return &report, nil
			}
		} else if err != redis.Nil {
			log.Debug().Err(err).Msg("Stats cache read failed")
		}
	}

	stats, err := s.documentRepo.StatsForCollection(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	uploads, err := s.documentRepo.UploadsOverTime(ctx, userID, collectionID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	contributors, err := s.documentRepo.TopContributors(ctx, userID, collectionID, 5)
	if err != nil {
		return nil, err
	}

	report := &CollectionStatsReport{
		Stats:           *stats,
		UploadsOverTime: uploads,
		TopContributors: contributors,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, s.statsCacheKey(userID, collectionID), payload, statsCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("Stats cache write failed")
			}
		}
	}
	return report, nil
}
