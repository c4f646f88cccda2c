package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
	"github.com/eddy-neller/shop-api-sub001/internal/usecase"
)

// AuthHandler exposes the credential verification endpoint.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	handlerChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	handlerChain = append(handlerChain, h.Login)
	r.POST("/login", handlerChain...)
}

// Login verifies credentials and records the visit.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		// Unknown accounts answer like wrong passwords to avoid
		// account enumeration.
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
			return
		}
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: domain.ErrAccountLocked, Status: http.StatusLocked, Message: "account is blocked"},
			{Err: usecase.ErrAccountNotActive, Status: http.StatusForbidden, Message: "account is not activated"},
		}, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "authenticated",
		User:    newUserPayload(user),
	})
}
