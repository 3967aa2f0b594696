package middleware

import (
	"strings" // String manipulation

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

// Identity is the authenticated caller
type Identity struct {
	UserID uint   // Authenticated user ID
	Email  string // Authenticated user email
}

// JWTAuthMiddleware validates the bearer token and attaches the identity
// to the request context. A missing token is 401, a bad or expired one 403.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization")) // Extract the token string
		if tokenStr == "" {
			logrus.WithField("path", c.FullPath()).Warn("Access denied. No token provided.")
			abort(c, apperr.New(apperr.Unauthenticated, "Access denied. No token provided."))
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": c.FullPath(), "error": err.Error()}).Warn("Invalid token.")
			abort(c, apperr.New(apperr.InvalidCredential, "Invalid or expired token."))
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(EmailKey, claims.Email)   // Store email in context
		c.Next()                        // Proceed to the next handler
	}
}

// CurrentUser returns the identity attached by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (Identity, bool) {
	userID, ok := c.Get(UserIDKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return Identity{}, false
	}
	return Identity{UserID: id, Email: c.GetString(EmailKey)}, true
}

// bearerToken returns the second space-separated word of the header, "" when
// there is none. The scheme word is not checked; a credential that is not a
// valid token fails verification instead.
func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(apperr.Status(err.Kind), gin.H{"error": err.Message})
}
