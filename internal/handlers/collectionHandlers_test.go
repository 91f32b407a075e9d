package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/access"
	"docpdf/internal/models"
	"docpdf/internal/services"
)

type stubCollectionService struct {
	addCollection    func(ctx context.Context, userID primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error)
	getCollection    func(ctx context.Context, userID, collectionID primitive.ObjectID) (*services.CollectionDetail, error)
	deleteCollection func(ctx context.Context, userID, collectionID primitive.ObjectID) error
	addMember        func(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error)
	updateMemberRole func(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID, role string) (*models.Member, error)
	manageShareLink  func(ctx context.Context, callerID, collectionID primitive.ObjectID, action, expiresIn string) (*services.ShareInfo, error)
}

func (s *stubCollectionService) AddCollection(ctx context.Context, userID primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error) {
	return s.addCollection(ctx, userID, payload)
}

func (s *stubCollectionService) GetCollections(ctx context.Context, userID primitive.ObjectID) ([]services.CollectionWithCount, error) {
	return []services.CollectionWithCount{}, nil
}

func (s *stubCollectionService) GetCollection(ctx context.Context, userID, collectionID primitive.ObjectID) (*services.CollectionDetail, error) {
	return s.getCollection(ctx, userID, collectionID)
}

func (s *stubCollectionService) UpdateCollection(ctx context.Context, userID, collectionID primitive.ObjectID, payload models.CollectionUpdate) (*models.Collection, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCollectionService) DeleteCollection(ctx context.Context, userID, collectionID primitive.ObjectID) error {
	return s.deleteCollection(ctx, userID, collectionID)
}

func (s *stubCollectionService) ListMembers(ctx context.Context, userID, collectionID primitive.ObjectID) ([]services.MemberEntry, error) {
	return []services.MemberEntry{}, nil
}

func (s *stubCollectionService) AddMember(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error) {
	return s.addMember(ctx, callerID, collectionID, email, role)
}

func (s *stubCollectionService) UpdateMemberRole(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID, role string) (*models.Member, error) {
	return s.updateMemberRole(ctx, callerID, collectionID, targetID, role)
}

func (s *stubCollectionService) RemoveMember(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID) error {
	return errors.New("not implemented")
}

func (s *stubCollectionService) GetShareInfo(ctx context.Context, callerID, collectionID primitive.ObjectID) (*services.ShareInfo, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCollectionService) ManageShareLink(ctx context.Context, callerID, collectionID primitive.ObjectID, action, expiresIn string) (*services.ShareInfo, error) {
	return s.manageShareLink(ctx, callerID, collectionID, action, expiresIn)
}

func (s *stubCollectionService) UpdateShareSettings(ctx context.Context, callerID, collectionID primitive.ObjectID, isPublic *bool, settings *models.CollectionSettings) (*services.ShareInfo, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCollectionService) GetStats(ctx context.Context, userID, collectionID primitive.ObjectID) (*services.CollectionStatsReport, error) {
	return nil, errors.New("not implemented")
}

// authedRequest builds a request carrying the user id the auth middleware
// would normally inject, plus any mux route variables.
func authedRequest(method, target, body string, userID primitive.ObjectID, vars map[string]string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(context.WithValue(req.Context(), "userID", userID.Hex()))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestAddCollectionCreated(t *testing.T) {
	userID := primitive.NewObjectID()
	svc := &stubCollectionService{
		addCollection: func(ctx context.Context, uid primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "Papers", payload.Name)
			return &models.Collection{ID: primitive.NewObjectID(), Name: payload.Name, CreatedBy: uid}, nil
		},
	}
	h := NewCollectionHandler(svc)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/collections", `{"name":"Papers"}`, userID, nil)
	h.AddCollection(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Papers")
}

func TestAddCollectionDuplicateNameIsBadRequest(t *testing.T) {
	svc := &stubCollectionService{
		addCollection: func(ctx context.Context, uid primitive.ObjectID, payload models.CollectionCreate) (*models.Collection, error) {
			return nil, access.Conflict("name", "a collection with this name already exists")
		},
	}
	h := NewCollectionHandler(svc)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/collections", `{"name":"Papers"}`, primitive.NewObjectID(), nil)
	h.AddCollection(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCollectionForbidden(t *testing.T) {
	svc := &stubCollectionService{
		getCollection: func(ctx context.Context, userID, collectionID primitive.ObjectID) (*services.CollectionDetail, error) {
			return nil, access.Forbidden("collection_id", "no access to this collection")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/collections/"+collectionID.Hex(), "", primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.GetCollection(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCollectionNotFound(t *testing.T) {
	svc := &stubCollectionService{
		getCollection: func(ctx context.Context, userID, collectionID primitive.ObjectID) (*services.CollectionDetail, error) {
			return nil, access.NotFound("collection_id", "collection not found")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/collections/"+collectionID.Hex(), "", primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.GetCollection(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCollectionMissingUserIsUnauthorized(t *testing.T) {
	h := NewCollectionHandler(&stubCollectionService{})

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/"+collectionID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": collectionID.Hex()})
	h.GetCollection(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddMemberDuplicateIsBadRequest(t *testing.T) {
	svc := &stubCollectionService{
		addMember: func(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error) {
			return nil, access.Conflict("user_id", "user is already a member")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/collections/"+collectionID.Hex()+"/members",
		`{"email":"someone@example.com","role":"viewer"}`, primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.AddMember(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddMemberUnknownEmailIsNotFound(t *testing.T) {
	svc := &stubCollectionService{
		addMember: func(ctx context.Context, callerID, collectionID primitive.ObjectID, email, role string) (*models.Member, error) {
			return nil, access.NotFound("email", "no user with this email")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/collections/"+collectionID.Hex()+"/members",
		`{"email":"ghost@example.com","role":"viewer"}`, primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.AddMember(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMemberRoleOwnerIsBadRequest(t *testing.T) {
	svc := &stubCollectionService{
		updateMemberRole: func(ctx context.Context, callerID, collectionID, targetID primitive.ObjectID, role string) (*models.Member, error) {
			return nil, access.Conflict("user_id", "cannot modify owner role")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPut, "/api/collections/"+collectionID.Hex()+"/members/"+targetID.Hex(),
		`{"role":"editor"}`, primitive.NewObjectID(),
		map[string]string{"id": collectionID.Hex(), "userId": targetID.Hex()})
	h.UpdateMemberRole(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCollectionWithDocumentsIsBadRequest(t *testing.T) {
	svc := &stubCollectionService{
		deleteCollection: func(ctx context.Context, userID, collectionID primitive.ObjectID) error {
			return access.Conflict("collection_id", "collection still contains documents")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/api/collections/"+collectionID.Hex(), "", primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.DeleteCollection(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManageShareLinkInvalidAction(t *testing.T) {
	svc := &stubCollectionService{
		manageShareLink: func(ctx context.Context, callerID, collectionID primitive.ObjectID, action, expiresIn string) (*services.ShareInfo, error) {
			return nil, access.InvalidArgument("action", "action must be generate, regenerate or revoke")
		},
	}
	h := NewCollectionHandler(svc)

	collectionID := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/collections/"+collectionID.Hex()+"/share",
		`{"action":"rotate"}`, primitive.NewObjectID(), map[string]string{"id": collectionID.Hex()})
	h.ManageShareLink(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
