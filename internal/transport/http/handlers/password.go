package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
	"github.com/eddy-neller/shop-api-sub001/internal/usecase"
)

// PasswordHandler exposes password reset and change endpoints.
type PasswordHandler struct {
	resets     *usecase.PasswordResetService
	dispatcher NotificationDispatcher
	isDev      bool
}

func NewPasswordHandler(resets *usecase.PasswordResetService, dispatcher NotificationDispatcher, isDev bool) *PasswordHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &PasswordHandler{
		resets:     resets,
		dispatcher: dispatcher,
		isDev:      isDev,
	}
}

// ResetPassword initiates a password reset for the supplied email address.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	email := strings.TrimSpace(req.Email)
	accepted := PasswordResetResponse{Message: "reset token sent if the account exists"}

	result, err := h.resets.RequestPasswordReset(c.Request.Context(), email)
	if err != nil {
		// Unknown accounts and malformed addresses get the same
		// acknowledgement to avoid account enumeration.
		var validationErr *domain.ValidationError
		if errors.Is(err, repository.ErrNotFound) || errors.As(err, &validationErr) {
			c.JSON(http.StatusAccepted, accepted)
			return
		}
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	expires := result.ExpiresAt.UTC().Format(time.RFC3339)
	accepted.ExpiresAt = &expires

	if h.isDev && result.Token != "" {
		token := result.Token
		accepted.DevToken = &token
	}

	_ = h.dispatcher.SendPasswordReset(c.Request.Context(), PasswordResetNotification{
		Email:     email,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})

	c.JSON(http.StatusAccepted, accepted)
}

// ConfirmReset completes a password reset using the mailed token.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset confirmation payload"))
		return
	}

	err := h.resets.CompletePasswordReset(c.Request.Context(), strings.TrimSpace(req.Token), req.NewPassword)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusBadRequest, Message: "reset token is invalid"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet requirements"},
			{Err: domain.ErrAccountLocked, Status: http.StatusLocked, Message: "account is blocked"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// ChangePassword replaces the password after verifying the current one.
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	err := h.resets.ChangePassword(c.Request.Context(), strings.TrimSpace(req.UserID), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: domain.ErrAccountLocked, Status: http.StatusLocked, Message: "account is blocked"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet requirements"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
