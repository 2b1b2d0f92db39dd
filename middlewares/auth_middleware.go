package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/utils"
)

// TokenCookie is the cookie /login sets for browser clients.
const TokenCookie = "token"

// bearerToken reads the token from "Authorization: Bearer" or the token cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware requires a valid token and puts user_id, role and token in
// the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("authorization token missing"))
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("token", tokenString)
		c.Next()
	}
}
