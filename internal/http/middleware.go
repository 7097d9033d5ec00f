package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"task-manager/internal/auth"
	"task-manager/internal/domain"
)

const (
	contextKeyUser      = "authUser"
	contextKeyRequestID = "requestID"
)

// AuthUser is the identity the auth middleware resolves and attaches to
// the request context. Downstream handlers trust it without re-verifying.
type AuthUser struct {
	ID    int64
	Email string
}

func currentUser(c *gin.Context) (AuthUser, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return AuthUser{}, false
	}
	user, ok := v.(AuthUser)
	return user, ok
}

// requireAuth rejects the request unless it carries a valid bearer token
// of the expected type whose subject still resolves to an existing user.
func (h *Handler) requireAuth(expected auth.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := h.authenticate(c, expected, true)
		if !ok {
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				abortUnauthorized(c, "User no longer exists.")
				return
			}
			respondError(c, http.StatusInternalServerError, "Internal server error during authentication.")
			c.Abort()
			return
		}

		c.Set(contextKeyUser, AuthUser{ID: user.ID, Email: user.Email})
		c.Next()
	}
}

// optionalAuth resolves an identity when a valid access token is present
// but lets the request through either way.
func (h *Handler) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := h.authenticate(c, auth.TokenTypeAccess, false)
		if ok {
			if user, err := h.users.GetByID(c.Request.Context(), claims.UserID); err == nil {
				c.Set(contextKeyUser, AuthUser{ID: user.ID, Email: user.Email})
			}
		}
		c.Next()
	}
}

// authenticate walks the token checks shared by both middleware variants.
// With strict set it writes the 401 response and aborts on failure.
func (h *Handler) authenticate(c *gin.Context, expected auth.TokenType, strict bool) (*auth.Claims, bool) {
	fail := func(message string) (*auth.Claims, bool) {
		if strict {
			abortUnauthorized(c, message)
		}
		return nil, false
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return fail("Access denied. No token provided.")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return fail("Invalid token format. Use: Bearer <token>")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return fail("Access denied. Token is empty.")
	}

	claims, err := h.issuer.VerifyToken(token)
	if err != nil {
		return fail(tokenErrorMessage(err))
	}
	if claims.Type != expected {
		if expected == auth.TokenTypeRefresh {
			return fail("Invalid token type. Refresh token required.")
		}
		return fail("Invalid token type. Access token required.")
	}
	return claims, true
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token has expired."
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token not active yet."
	case errors.Is(err, auth.ErrTokenMalformed):
		return "Token is malformed."
	default:
		return "Invalid token."
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, message)
	c.Abort()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger tags every request with an id and logs method, path,
// status and duration once the handler chain finishes.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(contextKeyRequestID, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_ip":   c.ClientIP(),
		}).Info("request completed")
	}
}
