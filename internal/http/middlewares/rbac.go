package middlewares

import (
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// ForbiddenRedirect is where clients send users after a policy violation.
const ForbiddenRedirect = "/resources"

// RequireRole admits callers whose role is at least min. It must run after
// RequireAuth.
func RequireRole(min user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)

		if !actor.Authenticated() {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context", nil)
			return
		}

		if !actor.Role.AtLeast(min) {
			abortError(c, http.StatusForbidden, "forbidden",
				"This action requires the "+string(min)+" role",
				gin.H{"redirect": ForbiddenRedirect})
			return
		}

		c.Next()
	}
}
