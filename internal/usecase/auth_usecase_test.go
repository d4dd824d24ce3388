package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/user"
	"careerhub/internal/pkg/jwt"
	"careerhub/internal/repository"
	ucauth "careerhub/internal/usecase/auth"
)

type mockAccounts struct {
	*mockUsers
}

func (m mockAccounts) CreateAccount(_ context.Context, a repository.NewAccount) (user.User, error) {
	u := a.User
	u.ID = uuid.New()
	m.users[u.ID] = u
	return u, nil
}

func (m mockAccounts) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

type expiredTokens struct{ jwt.Service }

func (expiredTokens) ValidateRefreshToken(string) (jwt.Claims, error) {
	return jwt.Claims{}, jwt.ErrTokenExpired
}

func TestAuth_RegisterIssuesTokensWithRole(t *testing.T) {
	tokens := jwt.NewHMACService("access", "refresh", time.Minute, time.Hour)
	uc := NewAuthUsecase(mockAccounts{newMockUsers()}, nil, tokens)

	u, access, refresh, err := uc.Register(context.Background(), ucauth.RegisterInput{
		Email: "sam@example.com", Password: "password1", FullName: "Sam", Role: "student",
	})
	require.NoError(t, err)

	claims, err := tokens.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "student", claims.Role)

	rc, err := tokens.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, u.ID, rc.UserID)
}

func TestAuth_Refresh(t *testing.T) {
	tokens := jwt.NewHMACService("access", "refresh", time.Minute, time.Hour)
	users := newMockUsers()
	id := users.addUser(user.RoleEmployer)
	uc := NewAuthUsecase(mockAccounts{users}, nil, tokens)
	ctx := context.Background()

	refresh, err := tokens.GenerateRefreshToken(id)
	require.NoError(t, err)
	access, next, err := uc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, next)

	_, _, err = uc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = uc.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "access tokens are not refresh tokens")

	expired := NewAuthUsecase(mockAccounts{users}, nil, expiredTokens{tokens})
	_, _, err = expired.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)

	gone, err := tokens.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)
	_, _, err = uc.Refresh(ctx, gone)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
