// Package service implements the authentication flows: credential
// verification, token issue/refresh and session invalidation.
package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/prescriptions-api/internal/app/auth/jwt"
	"github.com/clinicore/prescriptions-api/internal/app/auth/revocation"
	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
)

type Service interface {
	// Login verifies the credential pair and returns the identity
	// plus a fresh token pair. A prior logout for the subject is
	// cleared so the new session is usable immediately.
	Login(ctx context.Context, in dto.LoginDTO) (model.AuthUser, model.TokenPair, error)

	// Refresh exchanges a valid refresh credential for a new token
	// pair. The subject is re-resolved from the store; the stale
	// claims are never trusted for role data.
	Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error)

	// Logout records the subject in the revocation registry. It is
	// idempotent and never fails for an authenticated caller.
	Logout(ctx context.Context, userID uuid.UUID) error

	// Validate is the authentication gate: signature/expiry first,
	// revocation second, identity re-resolution third. The order is
	// fixed; it decides which failure the caller observes.
	Validate(ctx context.Context, accessToken string) (model.AuthUser, error)
}

type authService struct {
	users    repo.UserRepo
	registry revocation.Registry
	tokens   jwt.TokenIssuer
	v        *validator.Validate
	log      *zap.Logger
}

func New(users repo.UserRepo, registry revocation.Registry, tokens jwt.TokenIssuer, v *validator.Validate, log *zap.Logger) Service {
	return &authService{users: users, registry: registry, tokens: tokens, v: v, log: log}
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.AuthUser, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.AuthUser{}, model.TokenPair{}, errors.NewInvalidArgument("email and password are required")
	}

	user, err := a.users.GetByEmail(ctx, in.Email)
	switch {
	case stderrors.Is(err, errors.ErrNotFound):
		// same failure as a wrong password, so callers cannot
		// probe which emails exist
		a.log.Warn("login failed", zap.String("email", in.Email))
		return model.AuthUser{}, model.TokenPair{}, errors.ErrInvalidCredentials
	case err != nil:
		return model.AuthUser{}, model.TokenPair{}, errors.WrapInternal(err, "Login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		a.log.Warn("login failed", zap.String("email", in.Email))
		return model.AuthUser{}, model.TokenPair{}, errors.ErrInvalidCredentials
	}

	// a subject logged out earlier may log back in; clear the entry
	// before issuing tokens or the gate rejects the new session
	if err := a.registry.Unrevoke(ctx, user.ID); err != nil {
		return model.AuthUser{}, model.TokenPair{}, errors.WrapInternal(err, "Login")
	}

	pair, err := a.issueTokens(user)
	if err != nil {
		return model.AuthUser{}, model.TokenPair{}, err
	}

	a.log.Info("login ok", zap.String("user", user.ID.String()), zap.String("role", string(user.Role)))
	return authUserFrom(user), pair, nil
}

func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, errors.NewInvalidArgument("refreshToken is required")
	}

	claims, err := a.tokens.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return model.TokenPair{}, errors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, errors.ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, uid)
	if err != nil {
		return model.TokenPair{}, errors.ErrInvalidToken
	}

	pair, err := a.issueTokens(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	a.log.Info("tokens refreshed", zap.String("user", user.ID.String()))
	return pair, nil
}

func (a *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.registry.Revoke(ctx, userID); err != nil {
		return errors.WrapInternal(err, "Logout")
	}
	a.log.Info("logout", zap.String("user", userID.String()))
	return nil
}

func (a *authService) Validate(ctx context.Context, accessToken string) (model.AuthUser, error) {
	claims, err := a.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return model.AuthUser{}, errors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.AuthUser{}, errors.ErrInvalidToken
	}

	// revocation wins over cryptographic validity
	revoked, err := a.registry.IsRevoked(ctx, uid)
	if err != nil {
		return model.AuthUser{}, errors.WrapInternal(err, "Validate")
	}
	if revoked {
		return model.AuthUser{}, errors.ErrSessionRevoked
	}

	user, err := a.users.GetByID(ctx, uid)
	if err != nil {
		return model.AuthUser{}, errors.ErrInvalidToken
	}

	return authUserFrom(user), nil
}

func (a *authService) issueTokens(user model.User) (model.TokenPair, error) {
	at, atExp, err := a.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return model.TokenPair{}, err
	}
	rt, rtExp, err := a.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    time.Until(atExp),
		RefreshTTL:   time.Until(rtExp),
		UserID:       user.ID,
	}, nil
}

func authUserFrom(u model.User) model.AuthUser {
	return model.AuthUser{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		Doctor:  u.Doctor,
		Patient: u.Patient,
	}
}
