package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/astracore/crm-backend/internal/constants"
	apierrors "github.com/astracore/crm-backend/internal/errors"
)

// RequireRole rejects requests from accounts whose role is not in the
// allowed set. Must run after RequireAuth.
func RequireRole(roles ...constants.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "")
	}
}
