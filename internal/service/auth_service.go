package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/metrics"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/pkg/jwt"
)

const (
	msgInvalidCredentials = "invalid username or password"
	msgUserInactive       = "user account is inactive"
	msgSessionReplaced    = "session expired (logged in on another device)"
	msgTokenExpired       = "token has expired"
	msgTokenInvalid       = "invalid token"
)

type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
	Authenticate(tokenString string) (*authz.Caller, *model.User, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token     string             `json:"access_token"`
	TokenType string             `json:"token_type"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

type TokenValidationResponse struct {
	Valid bool               `json:"valid"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	metrics  *metrics.Metrics
	sessions SessionRevoker
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, m *metrics.Metrics, sessions SessionRevoker, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		metrics:  m,
		sessions: sessions,
		log:      log,
	}
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		found, ferr := exists(err)
		if ferr != nil {
			return nil, ferr
		}
		if !found {
			s.metrics.RecordAuth("failure")
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
	}

	if !user.CheckPassword(password) {
		s.metrics.RecordAuth("failure")
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	if !user.IsActive {
		s.metrics.RecordAuth("inactive")
		return nil, apperr.Denied(msgUserInactive)
	}

	// Single session: every login invalidates earlier tokens.
	now := time.Now().UTC()
	version := uuid.NewString()
	if err := s.userRepo.RecordLogin(user.ID, version, now); err != nil {
		return nil, apperr.Storage(err)
	}
	user.TokenVersion = version
	user.LastLoginAt = &now
	revoke(s.sessions, user.ID)

	token, expiresAt, err := s.tokens.GenerateToken(jwt.Subject{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         string(user.Role),
		CompanyID:    user.CompanyID,
		TokenVersion: version,
	})
	if err != nil {
		return nil, apperr.Storage(err)
	}

	s.metrics.RecordAuth("success")
	s.log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))

	return &LoginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}

// Authenticate resolves a bearer token to the current state of its account.
func (s *authService) Authenticate(tokenString string) (*authz.Caller, *model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, nil, apperr.Unauthenticated(msgTokenExpired)
		case errors.Is(err, jwt.ErrMissingToken):
			return nil, nil, apperr.Unauthenticated(jwt.ErrMissingToken.Error())
		default:
			return nil, nil, apperr.Unauthenticated(msgTokenInvalid)
		}
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		found, ferr := exists(err)
		if ferr != nil {
			return nil, nil, ferr
		}
		if !found {
			return nil, nil, apperr.Unauthenticated("user not found")
		}
	}
	if !user.IsActive {
		return nil, nil, apperr.Unauthenticated(msgUserInactive)
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, apperr.Unauthenticated(msgSessionReplaced)
	}

	return authz.NewCaller(user), user, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	_, user, err := s.Authenticate(tokenString)
	if err != nil {
		return nil, err
	}
	return &TokenValidationResponse{Valid: true, User: user.ToResponse()}, nil
}
