package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/internal/auth"
	"github.com/careplus/clinic-backend/internal/entity"
)

const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// RequireClient validates the bearer token and stores the caller's
// identity in the gin context.
func RequireClient(secret, adminScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		header := c.GetHeader("Authorization")
		if header != "" {
			raw = strings.TrimPrefix(header, "Bearer ")
		}
		if raw == "" {
			abortWith(c, entity.ErrNoTokenFound)
			return
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			abortWith(c, entity.ErrUnauthorized)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.Scope == adminScope)
		c.Next()
	}
}

// RequireAdmin must run after RequireClient.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			abortWith(c, entity.ErrAdminOnly)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user set by RequireClient.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// IsAdmin reports whether RequireClient resolved the admin scope.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}

func abortWith(c *gin.Context, err *entity.RequestError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"code":    err.Code,
		"message": err.Message,
	})
}
