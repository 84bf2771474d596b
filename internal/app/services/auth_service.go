package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/auth"
)

// AuthService handles operator login and management
type AuthService struct {
	operators  OperatorStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(operators OperatorStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		operators:  operators,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := s.operators.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrOperatorNotFound) {
			s.logger.Warn().Str("username", req.Username).Msg("Login attempt for unknown operator")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(op.PasswordHash, req.Password) {
		s.logger.Warn().Str("username", req.Username).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(op.ID, op.Username, string(op.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info().Int64("operatorId", op.ID).Str("username", op.Username).Msg("Operator logged in")
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Operator:    *op,
	}, nil
}

// CreateOperator registers a new operator
func (s *AuthService) CreateOperator(ctx context.Context, username, password string, role models.Role) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, apperrors.NewValidationError("username cannot be empty")
	}
	if !role.Valid() {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid role '%s'", role))
	}
	if len(password) < 8 {
		return 0, apperrors.NewValidationError("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}
	id, err := s.operators.Create(ctx, username, hash, role)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("operatorId", id).Str("username", username).Str("role", string(role)).Msg("Operator created")
	return id, nil
}

// ListOperators returns every operator
func (s *AuthService) ListOperators(ctx context.Context) ([]models.Operator, error) {
	return s.operators.List(ctx)
}

// EnsureAdmin creates the admin operator when no operator exists yet. It
// reports whether one was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.operators.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		s.logger.Warn().Msg("No operators exist and no admin password is configured; login is impossible until one is added")
		return false, nil
	}
	if _, err := s.CreateOperator(ctx, username, password, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
