package middleware

import (
	"context"
	"strings"

	"internship_portal/internal/apperror"
	"internship_portal/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	AuthSessionKey = "authSession"
	AuthTokenKey   = "authToken"
)

// SessionResolver turns a bearer token into the live session behind it
type SessionResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.Session, error)
}

// SessionMiddleware authenticates the request against the server-side session store.
// Every request is resolved again, so a logged-out token stops working immediately.
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperror.InvalidCredential("authorization header required", nil))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			abortWithError(c, apperror.InvalidCredential("invalid authorization header format", nil))
			return
		}

		session, err := resolver.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(AuthSessionKey, session)
		c.Set(AuthTokenKey, parts[1])
		c.Next()
	}
}

// GetSession returns the session stored by SessionMiddleware, or nil
func GetSession(c *gin.Context) *model.Session {
	val, exists := c.Get(AuthSessionKey)
	if !exists {
		return nil
	}
	session, _ := val.(*model.Session)
	return session
}

func abortWithError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Err != nil {
		c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), appErr.ToResponse())
}
