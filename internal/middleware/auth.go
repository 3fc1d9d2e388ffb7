package middleware

import (
	"net/http"

	"litverse-be/internal/auth"
	"litverse-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticate resolves the caller from the access token when one is sent.
// Requests without a valid token continue anonymously, so public routes such
// as login keep working with a stale cookie; RequireAuth enforces the 401.
// A stale auth cookie is expired on the way out.
func Authenticate(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractAccessToken(c.Request)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := tm.Parse(tokenStr)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Warn("ignoring invalid access token", zap.Error(err))
			if cookie, cerr := c.Request.Cookie(auth.CookieName); cerr == nil && cookie.Value == tokenStr {
				http.SetCookie(c.Writer, auth.ExpiredCookie(c.Request.TLS != nil))
			}
			c.Next()
			return
		}

		ctx := auth.WithCaller(c.Request.Context(), auth.Caller{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.CallerFrom(c.Request.Context()); !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := auth.CallerFrom(c.Request.Context())
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if caller.Role != role {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
