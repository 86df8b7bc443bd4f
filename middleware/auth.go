package middleware

import (
	"net/http"
	"strings"

	"qa-release-api/config"
	"qa-release-api/services"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the session token on every request. The jwtToken
// cookie is the primary carrier; an Authorization Bearer header is accepted
// as a fallback for API tooling.
func AuthMiddleware() gin.HandlerFunc {
	cfg := config.App()
	tokens := services.NewTokenService(cfg.JWT)

	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cfg.CookieName)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" || tokenString == authHeader {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				c.Abort()
				return
			}
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("empCode", claims.EmpCode)
		c.Set("empName", claims.EmpName)

		c.Next()
	}
}

// CurrentUserName returns the display name of the authenticated employee.
func CurrentUserName(c *gin.Context) (string, bool) {
	name, exists := c.Get("empName")
	if !exists {
		return "", false
	}
	s, ok := name.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
