package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/config"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// AuthService registers workers and issues access tokens.
type AuthService struct {
	cfg     config.AuthConfig
	workers repository.WorkerRepository
	tokens  *auth.TokenManager
	logger  *zap.Logger
}

// AuthDependencies bundles collaborators for AuthService.
type AuthDependencies struct {
	WorkerRepo repository.WorkerRepository
	Tokens     *auth.TokenManager
	Logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		cfg:     cfg,
		workers: deps.WorkerRepo,
		tokens:  deps.Tokens,
		logger:  deps.Logger,
	}
}

// RegisterWorkerInput carries signup fields.
type RegisterWorkerInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        domain.WorkerRole
}

// RegisterWorker creates a worker account and returns a signed token.
func (s *AuthService) RegisterWorker(ctx context.Context, input RegisterWorkerInput) (*domain.Worker, string, time.Time, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" || input.DisplayName == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("display_name, email and password are required", nil)
	}
	if !domain.ValidWorkerRole(input.Role) {
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown worker role", map[string]any{"role": input.Role})
	}

	if existing, err := s.workers.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hashed, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	worker := &domain.Worker{
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         input.Role,
		Availability: "available",
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokens.GenerateToken(worker.ID, worker.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("worker registered", zap.String("worker_id", worker.ID), zap.String("role", string(worker.Role)))
	return worker, token, expiresAt, nil
}

// Login authenticates a worker by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Worker, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	worker, err := s.workers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(worker.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(worker.ID, worker.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return worker, token, expiresAt, nil
}

// ListLinemen returns the field-worker roster for direct assignment pickers.
func (s *AuthService) ListLinemen(ctx context.Context) ([]domain.Worker, error) {
	workers, err := s.workers.ListByRole(ctx, domain.WorkerRoleLineman)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return workers, nil
}
