package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/access"
	"docpdf/internal/models"
	"docpdf/internal/services"
)

type stubUserService struct {
	register func(ctx context.Context, payload *models.Register) (*models.User, *services.TokenPair, error)
	login    func(ctx context.Context, creds *models.Login) (*models.User, *services.TokenPair, error)
	get      func(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

func (s *stubUserService) RegisterUser(ctx context.Context, payload *models.Register) (*models.User, *services.TokenPair, error) {
	return s.register(ctx, payload)
}

func (s *stubUserService) LoginUser(ctx context.Context, creds *models.Login) (*models.User, *services.TokenPair, error) {
	return s.login(ctx, creds)
}

func (s *stubUserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.get(ctx, userID)
}

func TestRegisterUserCreated(t *testing.T) {
	svc := &stubUserService{
		register: func(ctx context.Context, payload *models.Register) (*models.User, *services.TokenPair, error) {
			assert.Equal(t, "jane@example.com", payload.Email)
			user := &models.User{ID: primitive.NewObjectID(), Email: payload.Email}
			return user, &services.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"email":"jane@example.com","password":"Passw0rd","first_name":"Jane","last_name":"Doe"}`
	rec := httptest.NewRecorder()
	h.RegisterUser(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")
	assert.NotContains(t, rec.Body.String(), "Passw0rd")
}

func TestRegisterUserDuplicateEmailIsConflict(t *testing.T) {
	svc := &stubUserService{
		register: func(ctx context.Context, payload *models.Register) (*models.User, *services.TokenPair, error) {
			return nil, nil, access.Conflict("email", "email already registered")
		},
	}
	h := NewUserHandler(svc)

	body := `{"email":"jane@example.com","password":"Passw0rd"}`
	rec := httptest.NewRecorder()
	h.RegisterUser(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterUserInvalidJSON(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	rec := httptest.NewRecorder()
	h.RegisterUser(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUserBadCredentialsIsUnauthorized(t *testing.T) {
	svc := &stubUserService{
		login: func(ctx context.Context, creds *models.Login) (*models.User, *services.TokenPair, error) {
			return nil, nil, access.Unauthorized("credentials", "invalid email or password")
		},
	}
	h := NewUserHandler(svc)

	body := `{"email":"jane@example.com","password":"wrong"}`
	rec := httptest.NewRecorder()
	h.LoginUser(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTokenReturnsUser(t *testing.T) {
	userID := primitive.NewObjectID()
	svc := &stubUserService{
		get: func(ctx context.Context, uid primitive.ObjectID) (*models.User, error) {
			assert.Equal(t, userID, uid)
			return &models.User{ID: uid, Email: "jane@example.com"}, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req = req.WithContext(context.WithValue(req.Context(), "userID", userID.Hex()))
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@example.com")
}
