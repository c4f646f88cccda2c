package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/repository"
	"github.com/eddy-neller/shop-api-sub001/internal/usecase"
)

// RegistrationHandler exposes endpoints for signup and account activation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	dispatcher   NotificationDispatcher
	isDev        bool
}

func NewRegistrationHandler(registration *usecase.RegistrationService, dispatcher NotificationDispatcher, isDev bool) *RegistrationHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &RegistrationHandler{
		registration: registration,
		dispatcher:   dispatcher,
		isDev:        isDev,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/activate", h.Activate)
	r.POST("/activation/resend", h.ResendActivation)
}

// Register creates an inactive account and dispatches its activation token.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)

	result, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailAlreadyUsed, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet requirements"},
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "username or email already exists"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	resp := RegisterResponse{
		User:    newUserPayload(result.User),
		Message: "activation required",
	}

	expires := result.ExpiresAt.UTC().Format(time.RFC3339)
	resp.ExpiresAt = &expires

	// Raw tokens only ever appear in development responses. Production
	// delivery happens through the notification channel.
	if h.isDev && result.ActivationToken != "" {
		token := result.ActivationToken
		resp.DevToken = &token
	}

	_ = h.dispatcher.SendActivationToken(c.Request.Context(), ActivationNotification{
		Email:     req.Email,
		Username:  req.Username,
		Token:     result.ActivationToken,
		ExpiresAt: result.ExpiresAt,
	})

	c.JSON(http.StatusCreated, resp)
}

// Activate confirms an activation token and enables the account.
func (h *RegistrationHandler) Activate(c *gin.Context) {
	var req ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid activation payload"))
		return
	}

	user, err := h.registration.Activate(c.Request.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Token))
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountAlreadyActive, Status: http.StatusConflict, Message: "account is already active"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to activate account")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "account activated",
		User:    newUserPayload(user),
	})
}

// ResendActivation issues a fresh activation token, subject to the
// per-account request ceiling.
func (h *RegistrationHandler) ResendActivation(c *gin.Context) {
	var req ActivationResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resend payload"))
		return
	}

	email := strings.TrimSpace(req.Email)

	result, err := h.registration.RequestActivation(c.Request.Context(), email)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Not-found is masked to avoid account enumeration.
			c.JSON(http.StatusAccepted, ActivationResendResponse{Message: "activation token sent if the account exists"})
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountAlreadyActive, Status: http.StatusConflict, Message: "account is already active"},
		}, http.StatusInternalServerError, "failed to resend activation token")
		return
	}

	resp := ActivationResendResponse{Message: "activation token sent if the account exists"}

	expires := result.ExpiresAt.UTC().Format(time.RFC3339)
	resp.ExpiresAt = &expires

	if h.isDev && result.Token != "" {
		token := result.Token
		resp.DevToken = &token
	}

	_ = h.dispatcher.SendActivationToken(c.Request.Context(), ActivationNotification{
		Email:     email,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})

	c.JSON(http.StatusAccepted, resp)
}
