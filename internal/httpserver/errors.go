package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/domain"
	sessionsvc "xoned-commerce/internal/service/session"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}

// writeError maps service errors onto HTTP status codes. Unknown errors are
// logged and hidden behind a generic 500.
func (h *handler) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: verr.Message, Field: verr.Field})
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, sessionsvc.ErrInvalidToken):
		abortWithMessage(c, http.StatusUnauthorized, "not authorized")
	case errors.Is(err, domain.ErrForbidden):
		abortWithMessage(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		abortWithMessage(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		abortWithMessage(c, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrConflict):
		abortWithMessage(c, http.StatusConflict, "resource changed, retry")
	default:
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		abortWithMessage(c, http.StatusInternalServerError, "internal error")
	}
}

// bind decodes the JSON body, answering 400 on malformed input.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return false
	}
	return true
}
