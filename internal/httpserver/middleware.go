package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/domain"
	sessionsvc "xoned-commerce/internal/service/session"
)

type ctxKey string

const (
	identityCtxKey ctxKey = "identity"
	sessionCtxKey  ctxKey = "session"
)

const sessionHeader = "X-Session-Token"

// identityMiddleware attaches the caller identity when a bearer token is
// sent. Requests without one continue anonymously.
func identityMiddleware(verifier TokenVerifier, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortWithMessage(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Printf("auth: rejected token path=%s error=%v", c.FullPath(), err)
			abortWithMessage(c, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(c.Request.Context(), identityCtxKey, identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return gate(auth.RequireAdmin)
}

func requireUser() gin.HandlerFunc {
	return gate(auth.RequireUser)
}

func gate(check func(*auth.Identity) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := check(identityFrom(c))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, domain.ErrForbidden):
			abortWithMessage(c, http.StatusForbidden, "admin access required")
		default:
			abortWithMessage(c, http.StatusUnauthorized, "not authorized")
		}
	}
}

// sessionMiddleware resolves the anonymous session that owns the cart and
// wishlist.
func sessionMiddleware(sessions SessionService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(sessionHeader))
		if token == "" {
			abortWithMessage(c, http.StatusUnauthorized, "session token required")
			return
		}
		sessionID, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, sessionsvc.ErrInvalidToken) {
				abortWithMessage(c, http.StatusUnauthorized, "invalid session")
				return
			}
			logger.Printf("session: lookup error=%v", err)
			abortWithMessage(c, http.StatusInternalServerError, "internal error")
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func identityFrom(c *gin.Context) *auth.Identity {
	identity, _ := c.Request.Context().Value(identityCtxKey).(*auth.Identity)
	return identity
}

func sessionFrom(c *gin.Context) string {
	id, _ := c.Request.Context().Value(sessionCtxKey).(string)
	return id
}
