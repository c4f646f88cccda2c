package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
	"github.com/eddy-neller/shop-api-sub001/internal/usecase"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// UserHandler exposes administrative account management endpoints.
type UserHandler struct {
	users        *usecase.UserService
	registration *usecase.RegistrationService
}

func NewUserHandler(users *usecase.UserService, registration *usecase.RegistrationService) *UserHandler {
	return &UserHandler{
		users:        users,
		registration: registration,
	}
}

// RegisterRoutes binds user management endpoints.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
	r.POST("/:id/unblock", h.Unblock)
	r.PUT("/:id/avatar", h.UpdateAvatar)
}

// List returns a page of accounts with optional status and search filters.
func (h *UserHandler) List(c *gin.Context) {
	query := port.ListUsersQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  defaultListLimit,
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := domain.ParseUserStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown status filter"))
			return
		}
		query.Status = &status
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		query.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "offset must be a non-negative integer"))
			return
		}
		query.Offset = offset
	}

	users, total, err := h.users.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	payloads := make([]UserPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, newUserPayload(user))
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users:  payloads,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
}

// Get returns a single account by identifier.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(user))
}

// Create provisions an account with caller-supplied roles and status.
func (h *UserHandler) Create(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.registration.CreateByAdmin(c.Request.Context(), usecase.CreateByAdminInput{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		Firstname: strings.TrimSpace(req.Firstname),
		Lastname:  strings.TrimSpace(req.Lastname),
		Roles:     req.Roles,
		Status:    strings.TrimSpace(req.Status),
	})
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailAlreadyUsed, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet requirements"},
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "username or email already exists"},
		}, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserPayload(user))
}

// Update applies a partial account edit.
func (h *UserHandler) Update(c *gin.Context) {
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	user, err := h.users.UpdateByAdmin(c.Request.Context(), c.Param("id"), usecase.AdminUpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Roles:     req.Roles,
		Status:    req.Status,
		Password:  req.Password,
	})
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet requirements"},
			{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "username or email already exists"},
		}, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(user))
}

// Delete removes an account.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// Unblock clears the brute-force lockout and restores the account.
func (h *UserHandler) Unblock(c *gin.Context) {
	user, err := h.users.Unblock(c.Request.Context(), c.Param("id"))
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to unblock user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(user))
}

// UpdateAvatar replaces the stored avatar location.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var req AvatarUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid avatar payload"))
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Avatar))
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to update avatar")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(user))
}
