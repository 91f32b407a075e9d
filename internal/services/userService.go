package services

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"docpdf/internal/access"
	"docpdf/internal/metrics"
	"docpdf/internal/models"
	"docpdf/internal/repositories"
	"docpdf/internal/utils"
)

// TokenPair is what a successful register or login hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService defines the interface for account-related business logic.
type UserService interface {
	RegisterUser(ctx context.Context, payload *models.Register) (*models.User, *TokenPair, error)
	LoginUser(ctx context.Context, creds *models.Login) (*models.User, *TokenPair, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordLower = regexp.MustCompile(`[a-z]`)
	passwordUpper = regexp.MustCompile(`[A-Z]`)
	passwordDigit = regexp.MustCompile(`\d`)
)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return access.InvalidArgument("email", "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return access.InvalidArgument("password", "password must be at least 6 characters")
	}
	if !passwordLower.MatchString(password) || !passwordUpper.MatchString(password) || !passwordDigit.MatchString(password) {
		return access.InvalidArgument("password", "password must contain a lowercase letter, an uppercase letter and a digit")
	}
	return nil
}

func (s *userService) RegisterUser(ctx context.Context, payload *models.Register) (*models.User, *TokenPair, error) {
	log.Debug().Str("email", payload.Email).Msg("Attempting to register user")

	if payload.Email == "" || payload.Password == "" || payload.FirstName == "" || payload.LastName == "" {
		return nil, nil, access.InvalidArgument("email", "email, password, first name and last name are required")
	}
	if err := validateEmail(payload.Email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(payload.Password); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), 8)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during registration")
		return nil, nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     payload.Email,
		Password:  string(hashedPassword),
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      models.UserRoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("email", payload.Email).Msg("Email already exists during user insertion")
			return nil, nil, access.Conflict("email", "a user with this email already exists")
		}
		return nil, nil, err
	}

	tokens, err := issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	metrics.NewUsersTotal.Inc()
	log.Info().Str("user_id", user.ID.Hex()).Str("email", user.Email).Msg("User registered successfully")

	sanitized := user.Sanitize()
	return &sanitized, tokens, nil
}

func (s *userService) LoginUser(ctx context.Context, creds *models.Login) (*models.User, *TokenPair, error) {
	log.Debug().Str("email", creds.Email).Msg("Attempting user login")

	if creds.Email == "" || creds.Password == "" {
		return nil, nil, access.InvalidArgument("email", "email and password are required")
	}
	if err := validateEmail(creds.Email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		if err == mongo.ErrNoDocuments {
			return nil, nil, access.Unauthorized("email", "invalid credentials")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		log.Warn().Str("email", creds.Email).Msg("Login attempt for deactivated account")
		return nil, nil, access.Unauthorized("email", "account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		return nil, nil, access.Unauthorized("email", "invalid credentials")
	}

	now := time.Now()
	if _, err := s.userRepo.Update(ctx, user.ID, bson.M{"last_login": now}); err != nil {
		// Login still succeeds; the timestamp is best effort.
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Failed to record last login")
	}
	user.LastLogin = &now

	tokens, err := issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")

	sanitized := user.Sanitize()
	return &sanitized, tokens, nil
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, access.NotFound("user_id", "user not found")
		}
		return nil, err
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

func issueTokens(userID primitive.ObjectID) (*TokenPair, error) {
	accessToken, err := utils.GenerateAccessToken(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error generating access token")
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error generating refresh token")
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
