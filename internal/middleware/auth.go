package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the context key carrying the authenticated user's ID.
const UserIDKey = "user_id"

// OptionalAuth parses a bearer token when present and stores the subject
// claim on the context. Anonymous requests pass through untouched; the
// planning and feedback endpoints work either way, feedback just loses
// attribution without a token.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				c.Set(UserIDKey, sub)
			}
		}

		c.Next()
	}
}

// UserID returns the authenticated user's ID, or nil for anonymous requests.
func UserID(c *gin.Context) *string {
	if v, ok := c.Get(UserIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}
