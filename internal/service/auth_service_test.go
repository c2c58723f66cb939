package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/config"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/repository/memory"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

func newAuthService(store *memory.Store) *AuthService {
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	return NewAuthService(cfg, AuthDependencies{
		WorkerRepo: store.Workers(),
		Tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		Logger:     zap.NewNop(),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	worker, token, expiresAt, err := svc.RegisterWorker(ctx, RegisterWorkerInput{
		DisplayName: "Ravi",
		Email:       "Ravi@Example.com",
		Password:    "hunter2",
		Role:        domain.WorkerRoleLineman,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, worker.ID)
	assert.Equal(t, "ravi@example.com", worker.Email)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
	assert.NotEqual(t, "hunter2", worker.PasswordHash)

	logged, token2, _, err := svc.Login(ctx, "ravi@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, worker.ID, logged.ID)
	assert.NotEmpty(t, token2)
}

func TestLoginWrongPassword(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, _, _, err := svc.RegisterWorker(ctx, RegisterWorkerInput{
		DisplayName: "Ravi", Email: "ravi@example.com", Password: "hunter2", Role: domain.WorkerRoleLineman,
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "ravi@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	input := RegisterWorkerInput{
		DisplayName: "Ravi", Email: "ravi@example.com", Password: "hunter2", Role: domain.WorkerRoleLineman,
	}
	_, _, _, err := svc.RegisterWorker(ctx, input)
	require.NoError(t, err)

	_, _, _, err = svc.RegisterWorker(ctx, input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestRegisterInvalidRole(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store)

	_, _, _, err := svc.RegisterWorker(context.Background(), RegisterWorkerInput{
		DisplayName: "Ravi", Email: "ravi@example.com", Password: "hunter2", Role: domain.WorkerRole("supervisor"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 5)
	token, _, err := tm.GenerateToken("worker-1", domain.WorkerRoleAdmin)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "worker-1", claims.WorkerID)
	assert.Equal(t, domain.WorkerRoleAdmin, claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := auth.NewTokenManager("secret-a", 5).GenerateToken("worker-1", domain.WorkerRoleLineman)
	require.NoError(t, err)

	_, err = auth.NewTokenManager("secret-b", 5).ParseToken(token)
	assert.Error(t, err)
}
