package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
)

// handleError maps the domain error taxonomy onto HTTP statuses. The
// envelope is always {"error": "..."} and internal detail stays out
// of the response body.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Message(err)})
	case errors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.IsSessionRevoked(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": errors.Message(err)})
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": errors.Message(err)})
	case errors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": errors.Message(err)})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
