package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"careerhub/internal/domain/user"
	"careerhub/internal/pkg/jwt"
	ucauth "careerhub/internal/usecase/auth"
)

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, string, string, error)
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	ChangePassword(ctx context.Context, in ucauth.ChangePasswordInput) error
}

type Auth struct {
	authSvc *ucauth.Service
	users   ucauth.Accounts
	jwt     jwt.Service
}

func NewAuthUsecase(users ucauth.Accounts, orgs ucauth.Orgs, jwtSvc jwt.Service) *Auth {
	return &Auth{authSvc: ucauth.NewService(users, orgs), users: users, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, string, string, error) {
	usr, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return user.User{}, "", "", err
	}
	access, refresh, err := u.issue(usr)
	if err != nil {
		return user.User{}, "", "", err
	}
	return usr, access, refresh, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, string, string, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, "", "", err
	}
	access, refresh, err := u.issue(usr)
	if err != nil {
		return user.User{}, "", "", err
	}
	return usr, access, refresh, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}
	if claims.UserID == uuid.Nil {
		return "", "", ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", "", ErrUnauthorized
		}
		return "", "", ErrInternal
	}
	return u.issue(usr)
}

func (u *Auth) ChangePassword(ctx context.Context, in ucauth.ChangePasswordInput) error {
	return u.authSvc.ChangePassword(ctx, in)
}

func (u *Auth) issue(usr user.User) (string, string, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.Email, string(usr.Role))
	if err != nil {
		return "", "", ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return "", "", ErrInternal
	}
	return access, refresh, nil
}
