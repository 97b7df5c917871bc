package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// Claims is the access-token payload issued by the upstream auth service.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			abortJSON(c, http.StatusUnauthorized, "Authorization header required", "MISSING_AUTH_HEADER")
			return
		}

		const bearerPrefix = "Bearer "
		tokenString, ok := strings.CutPrefix(authHeader, bearerPrefix)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "Bearer token required", "INVALID_AUTH_FORMAT")
			return
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			abortJSON(c, http.StatusUnauthorized, "Token cannot be empty", "EMPTY_TOKEN")
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			} else if method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected HMAC algorithm: %v", method.Alg())
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortJSON(c, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
				return
			}
			abortJSON(c, http.StatusUnauthorized, "Invalid token", "TOKEN_INVALID")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			abortJSON(c, http.StatusUnauthorized, "Invalid token claims", "INVALID_CLAIMS")
			return
		}

		if err := validateTokenClaims(claims); err != nil {
			abortJSON(c, http.StatusUnauthorized, "Token validation failed", "CLAIM_VALIDATION_FAILED")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
	}
}

func validateTokenClaims(claims *Claims) error {
	now := time.Now()

	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return fmt.Errorf("token has expired")
	}

	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return fmt.Errorf("token not valid yet")
	}

	if claims.TokenType != "access" {
		return fmt.Errorf("invalid token type: expected access, got %s", claims.TokenType)
	}

	if claims.UserID == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}

	return nil
}

// PrincipalFromContext reads the authenticated identity the middleware stored.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		return domain.Principal{}, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return domain.Principal{}, false
	}

	role := domain.RoleNormalUser
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(string); ok && r != "" {
			role = r
		}
	}

	return domain.Principal{UserID: id, Role: role}, true
}

func abortJSON(c *gin.Context, code int, message, errorCode string) {
	c.JSON(code, gin.H{
		"error": message,
		"code":  errorCode,
	})
	c.Abort()
}
