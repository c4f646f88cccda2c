package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondDomainError handles the typed domain errors shared across
// handlers. It reports whether the error was consumed.
func respondDomainError(c *gin.Context, err error) bool {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr.Error()))
		return true
	}

	var rateLimitErr *domain.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.JSON(http.StatusTooManyRequests, NewErrorResponse(c, rateLimitErr.Error()))
		return true
	}

	var tokenErr *domain.TokenError
	if errors.As(err, &tokenErr) {
		status := http.StatusBadRequest
		if tokenErr.Fault == domain.TokenExpired {
			status = http.StatusGone
		}
		c.JSON(status, NewErrorResponse(c, tokenErr.Error()))
		return true
	}

	return false
}
