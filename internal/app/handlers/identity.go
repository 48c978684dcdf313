package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kalpovskii/taskboard/internal/app/services"
)

const userIDKey = "userID"

var errInvalidToken = errors.New("invalid token")

// IdentityConfig selects how the caller is identified. Tokens are issued
// elsewhere; this only verifies them.
type IdentityConfig struct {
	// JWTSecret enables HS256 bearer token verification. The token subject
	// becomes the user id.
	JWTSecret string
	// UserHeader is trusted when no secret is configured; an upstream
	// gateway is expected to set it.
	UserHeader string
}

// Identity resolves the caller and stores it on the gin and request
// contexts. Anonymous requests pass through; handlers that need a user
// check UserID themselves.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(c *gin.Context) {
		var userID string
		switch {
		case len(secret) > 0:
			header := c.GetHeader("Authorization")
			if header == "" {
				break
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				return
			}
			subject, err := tokenSubject(token, secret)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			userID = subject
		case cfg.UserHeader != "":
			userID = strings.TrimSpace(c.GetHeader(cfg.UserHeader))
		}

		if userID != "" {
			c.Set(userIDKey, userID)
			c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), userID))
		}
		c.Next()
	}
}

// UserID returns the resolved caller, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func tokenSubject(raw string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}
