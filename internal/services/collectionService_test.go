package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"docpdf/internal/access"
	"docpdf/internal/models"
	"docpdf/internal/repositories"
)

var errNotStubbed = errors.New("not stubbed")

type stubCollectionRepo struct {
	byID            map[primitive.ObjectID]*models.Collection
	created         *models.Collection
	replacedMembers *models.Collection
	shareTokenSet   *models.Collection
}

func (r *stubCollectionRepo) Create(ctx context.Context, col *models.Collection) (*models.Collection, error) {
	r.created = col
	return col, nil
}

func (r *stubCollectionRepo) FindByID(ctx context.Context, collectionID primitive.ObjectID) (*models.Collection, error) {
	col, ok := r.byID[collectionID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *col
	return &copied, nil
}

func (r *stubCollectionRepo) FindByOwnerAndName(ctx context.Context, ownerID primitive.ObjectID, name string, excludeID *primitive.ObjectID) (*models.Collection, error) {
	for _, col := range r.byID {
		if col.CreatedBy == ownerID && col.Name == name {
			if excludeID != nil && col.ID == *excludeID {
				continue
			}
			return col, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *stubCollectionRepo) FindAccessible(ctx context.Context, userID primitive.ObjectID) ([]models.Collection, error) {
	return nil, errNotStubbed
}

func (r *stubCollectionRepo) Update(ctx context.Context, collectionID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (r *stubCollectionRepo) ReplaceMembers(ctx context.Context, c *models.Collection) error {
	r.replacedMembers = c
	return nil
}

func (r *stubCollectionRepo) SetShareToken(ctx context.Context, c *models.Collection) error {
	r.shareTokenSet = c
	return nil
}

func (r *stubCollectionRepo) Delete(ctx context.Context, collectionID primitive.ObjectID) (*mongo.DeleteResult, error) {
	delete(r.byID, collectionID)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (r *stubCollectionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubDocumentRepo struct {
	countInCollection int64
}

func (r *stubDocumentRepo) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	return nil, errNotStubbed
}

func (r *stubDocumentRepo) FindByID(ctx context.Context, documentID primitive.ObjectID) (*models.Document, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *stubDocumentRepo) FindAccessible(ctx context.Context, userID primitive.ObjectID, opts models.DocumentListOptions) ([]models.Document, int64, error) {
	return nil, 0, errNotStubbed
}

func (r *stubDocumentRepo) FindRecentInCollection(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]models.Document, error) {
	return []models.Document{}, nil
}

func (r *stubDocumentRepo) CountInCollection(ctx context.Context, collectionID primitive.ObjectID) (int64, error) {
	return r.countInCollection, nil
}

func (r *stubDocumentRepo) CountAccessibleInCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (int64, error) {
	return r.countInCollection, nil
}

func (r *stubDocumentRepo) Update(ctx context.Context, documentID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	return nil, errNotStubbed
}

func (r *stubDocumentRepo) Delete(ctx context.Context, documentID primitive.ObjectID) (*mongo.DeleteResult, error) {
	return nil, errNotStubbed
}

func (r *stubDocumentRepo) RecordDownload(ctx context.Context, documentID primitive.ObjectID, at time.Time) error {
	return nil
}

func (r *stubDocumentRepo) StatsForCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*repositories.CollectionDocumentStats, error) {
	return &repositories.CollectionDocumentStats{}, nil
}

func (r *stubDocumentRepo) UploadsOverTime(ctx context.Context, userID, collectionID primitive.ObjectID, since time.Time) ([]repositories.UploadsPerDay, error) {
	return []repositories.UploadsPerDay{}, nil
}

func (r *stubDocumentRepo) TopContributors(ctx context.Context, userID, collectionID primitive.ObjectID, limit int64) ([]repositories.Contributor, error) {
	return []repositories.Contributor{}, nil
}

type stubUserRepo struct {
	byEmail map[string]*models.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return nil, errNotStubbed
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *stubUserRepo) Update(ctx context.Context, userID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	return nil, errNotStubbed
}

func (r *stubUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

func newTestCollection(owner primitive.ObjectID) *models.Collection {
	return &models.Collection{
		ID:        primitive.NewObjectID(),
		Name:      "Research",
		CreatedBy: owner,
		Members:   []models.Member{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestAddCollectionDefaults(t *testing.T) {
	owner := primitive.NewObjectID()
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	col, err := svc.AddCollection(context.Background(), owner, models.CollectionCreate{Name: "  Papers  "})
	require.NoError(t, err)

	assert.Equal(t, "Papers", col.Name)
	assert.Equal(t, owner, col.CreatedBy)
	assert.Equal(t, models.DefaultCollectionColor, col.Color)
	assert.Equal(t, models.DefaultCollectionIcon, col.Icon)
	assert.NotNil(t, col.Members)
	assert.Empty(t, col.Members)
	assert.True(t, col.Settings.AutoTagging)
	require.NotNil(t, colRepo.created)
}

func TestAddCollectionEmptyName(t *testing.T) {
	svc := NewCollectionService(&stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{}}, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	_, err := svc.AddCollection(context.Background(), primitive.NewObjectID(), models.CollectionCreate{Name: "   "})
	assert.Equal(t, access.KindInvalidArgument, access.KindOf(err))
}

func TestAddCollectionDuplicateName(t *testing.T) {
	owner := primitive.NewObjectID()
	existing := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{existing.ID: existing}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	_, err := svc.AddCollection(context.Background(), owner, models.CollectionCreate{Name: "Research"})
	assert.Equal(t, access.KindConflict, access.KindOf(err))
}

func TestAddMemberByEmail(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}

	target := &models.User{ID: primitive.NewObjectID(), Email: "member@example.com"}
	userRepo := &stubUserRepo{byEmail: map[string]*models.User{"member@example.com": target}}

	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, userRepo, nil)

	member, err := svc.AddMember(context.Background(), owner, col.ID, "Member@Example.com", "editor")
	require.NoError(t, err)

	assert.Equal(t, target.ID, member.User)
	assert.Equal(t, "editor", member.Role)
	require.NotNil(t, colRepo.replacedMembers)
	assert.Len(t, colRepo.replacedMembers.Members, 1)
}

func TestAddMemberUnknownEmail(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{byEmail: map[string]*models.User{}}, nil)

	_, err := svc.AddMember(context.Background(), owner, col.ID, "ghost@example.com", "viewer")
	assert.Equal(t, access.KindNotFound, access.KindOf(err))
	assert.Nil(t, colRepo.replacedMembers)
}

func TestAddMemberMissingCollection(t *testing.T) {
	svc := NewCollectionService(&stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{}}, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	_, err := svc.AddMember(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "a@b.com", "viewer")
	assert.Equal(t, access.KindNotFound, access.KindOf(err))
}

func TestDeleteCollectionWithDocuments(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{countInCollection: 3}, &stubUserRepo{}, nil)

	err := svc.DeleteCollection(context.Background(), owner, col.ID)
	assert.Equal(t, access.KindConflict, access.KindOf(err))
	assert.Contains(t, colRepo.byID, col.ID)
}

func TestDeleteEmptyCollection(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	err := svc.DeleteCollection(context.Background(), owner, col.ID)
	require.NoError(t, err)
	assert.NotContains(t, colRepo.byID, col.ID)
}

func TestManageShareLinkGenerate(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	info, err := svc.ManageShareLink(context.Background(), owner, col.ID, "generate", "7d")
	require.NoError(t, err)

	assert.Len(t, info.ShareToken, 64)
	require.NotNil(t, info.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *info.ExpiresAt, time.Minute)
	require.NotNil(t, colRepo.shareTokenSet)
	assert.Equal(t, info.ShareToken, colRepo.shareTokenSet.ShareToken)
}

func TestManageShareLinkRevoke(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	col.ShareToken = "existing"
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	info, err := svc.ManageShareLink(context.Background(), owner, col.ID, "revoke", "")
	require.NoError(t, err)

	assert.Empty(t, info.ShareToken)
	assert.Empty(t, info.ShareURL)
	assert.Nil(t, info.ExpiresAt)
}

func TestManageShareLinkInvalidAction(t *testing.T) {
	owner := primitive.NewObjectID()
	col := newTestCollection(owner)
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	_, err := svc.ManageShareLink(context.Background(), owner, col.ID, "rotate", "")
	assert.Equal(t, access.KindInvalidArgument, access.KindOf(err))
	assert.Nil(t, colRepo.shareTokenSet)
}

func TestListMembersIncludesOwnerFirst(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	col := newTestCollection(owner)
	col.Members = []models.Member{{User: member, Role: "viewer", AddedAt: time.Now()}}
	colRepo := &stubCollectionRepo{byID: map[primitive.ObjectID]*models.Collection{col.ID: col}}
	svc := NewCollectionService(colRepo, &stubDocumentRepo{}, &stubUserRepo{}, nil)

	entries, err := svc.ListMembers(context.Background(), member, col.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, owner, entries[0].User)
	assert.True(t, entries[0].IsOwner)
	assert.Equal(t, "owner", entries[0].Role)
	assert.Equal(t, member, entries[1].User)
}
