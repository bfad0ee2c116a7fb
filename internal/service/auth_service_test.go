package service_test

import (
	"context"
	"errors"
	"testing"

	"nexopos/internal/config"
	"nexopos/internal/dto"
	"nexopos/internal/model"
	"nexopos/internal/repository"
	"nexopos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func buildAuthSvc(t *testing.T) (service.AuthService, *model.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		Email:        "clerk@demo.nexopos.io",
		FullName:     "Demo Clerk",
		PasswordHash: string(hash),
		Role:         "CASHIER",
		IsActive:     true,
	}
	repo := &stubUserRepo{users: map[uuid.UUID]*model.User{user.ID: user}}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 24}
	return service.NewAuthService(repo, cfg), user
}

func TestLogin_Succeeds(t *testing.T) {
	svc, user := buildAuthSvc(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, user.TenantID.String(), resp.User.TenantID)
	assert.Equal(t, "CASHIER", resp.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, user := buildAuthSvc(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "battery staple",
	})
	require.EqualError(t, err, "invalid credentials")
}

func TestLogin_UnknownAndInactiveLookAlike(t *testing.T) {
	svc, user := buildAuthSvc(t)

	_, unknownErr := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@demo.nexopos.io",
		Password: "correct horse",
	})
	user.IsActive = false
	_, inactiveErr := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})

	// Same message either way: login must not leak which accounts exist
	require.EqualError(t, unknownErr, "invalid credentials")
	require.EqualError(t, inactiveErr, "invalid credentials")
}

func TestRefresh_RoundTrip(t *testing.T) {
	svc, user := buildAuthSvc(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, user.ID.String(), refreshed.User.ID)
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	svc, _ := buildAuthSvc(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
}

func TestRefresh_InactiveUser(t *testing.T) {
	svc, user := buildAuthSvc(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	user.IsActive = false
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}
