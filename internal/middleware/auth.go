// ===========================================
// Package middleware - JWT Authentication
// ===========================================
// Verifies bearer tokens on the private and link-management routes.
//
// FLOW:
// 1. Extract the token from the Authorization header
// 2. Verify signature and expiry against the shared secret
// 3. Attach the subject (user id) to the request context
// 4. Reject with 401 otherwise
//
// The middleware only establishes WHO the caller is. Ownership checks
// (what they may touch) live in the service layer.
// ===========================================

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/linkgate/internal/models"
)

// ContextUserID is the gin context key carrying the verified subject.
const ContextUserID = "user_id"

// JWTAuth is the middleware for bearer-token authentication.
type JWTAuth struct {
	secret []byte
}

// NewJWTAuth creates a new JWT auth middleware.
func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{secret: []byte(secret)}
}

// RequireUser returns middleware that rejects requests without a valid
// bearer token.
func (a *JWTAuth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.verify(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Invalid or missing bearer token",
				Code:  models.ErrCodeUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// verify extracts and validates the token, returning its subject.
func (a *JWTAuth) verify(c *gin.Context) (string, error) {
	raw := extractBearer(c)
	if raw == "" {
		return "", errors.New("no token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Pin the algorithm. Accepting whatever the token announces
		// opens the classic alg-confusion hole.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}

	return claims.Subject, nil
}

// extractBearer pulls the token out of "Authorization: Bearer <token>".
func extractBearer(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// GetUserID retrieves the verified user id from the context.
// Empty when the request did not pass RequireUser.
func GetUserID(c *gin.Context) string {
	if val, exists := c.Get(ContextUserID); exists {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
