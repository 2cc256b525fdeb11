package middleware

import (
	"log"
	"slices"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check the session role.
// The services repeat the check per operation; this only rejects early.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil {
			abortWithError(c, apperror.InvalidCredential("authentication required", nil))
			return
		}

		if !slices.Contains(allowedRoles, session.Role) {
			log.Printf("WARN: user %d (%s) denied %s %s", session.UserID, session.Role, c.Request.Method, c.FullPath())
			abortWithError(c, apperror.AccessDenied("you do not have permission to access this resource", nil))
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// StudentMiddleware checks if the user is a student
func StudentMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleStudent)
}
