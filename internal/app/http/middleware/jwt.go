package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"signage-panel/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AuthCookie = "painel_auth"
	TokenTTL   = 12 * time.Hour

	userKey = "user"
)

type UserLoader interface {
	GetUser(ctx context.Context, id uint) (users.User, error)
}

// IssueToken signs a session token for u.
func IssueToken(secret string, u users.User, now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	})
	return t.SignedString([]byte(secret))
}

func parseUserID(secret, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, fmt.Errorf("invalid token claims")
	}
	return uint(userIDFloat), nil
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return strings.TrimSpace(token)
	}
	return ""
}

// AttachUser loads the session user, if any. Requests without a valid
// session, or whose user is inactive, continue anonymously.
func AttachUser(secret string, loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}
		id, err := parseUserID(secret, tokenString)
		if err != nil {
			c.Next()
			return
		}
		u, err := loader.GetUser(c.Request.Context(), id)
		if err != nil || !u.Active {
			c.Next()
			return
		}
		c.Set(userKey, &u)
		c.Set("user_id", u.ID)
		c.Set("role", u.Role)
		c.Next()
	}
}

// CurrentUser returns the session user set by AttachUser, or nil.
func CurrentUser(c *gin.Context) *users.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*users.User); ok {
			return u
		}
	}
	return nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		if value != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
