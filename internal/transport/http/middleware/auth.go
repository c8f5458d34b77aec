package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/prescriptions-api/internal/app/auth/service"
	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

const identityKey = "authUser"

// Authenticate runs the authentication gate: it extracts the bearer
// token and lets the auth service verify signature, revocation and
// subject existence, in that order. On success the resolved identity
// is attached to the request context; handlers never see raw claims.
func Authenticate(auth service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := auth.Validate(c.Request.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			switch {
			case errors.IsSessionRevoked(err):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			case errors.IsInternal(err):
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			}
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// RequireRoles gates a route on an explicit allow-list. Roles are not
// hierarchical; an admin passes only where admin is listed.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// Identity returns the authenticated user attached by Authenticate.
func Identity(c *gin.Context) (model.AuthUser, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.AuthUser{}, false
	}
	user, ok := v.(model.AuthUser)
	return user, ok
}
