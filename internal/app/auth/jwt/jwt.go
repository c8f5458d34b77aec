// Package jwt issues and validates the two token kinds. Access and
// refresh tokens are signed with distinct HS256 secrets, so one kind
// can never pass for the other.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

// AccessClaims is the access-token payload: subject, email and role.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// RefreshClaims deliberately omits the role. The refresh flow
// re-resolves the subject from the store, so stale role data in a
// long-lived token is never trusted.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string, role model.Role) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID, email string) (string, time.Time, error)
	ValidateAccessToken(raw string) (AccessClaims, error)
	ValidateRefreshToken(raw string) (RefreshClaims, error)
}
