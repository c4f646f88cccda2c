package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/infra/logger"
)

// ErrorResponse represents a generic error payload with the request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Request.Context().Value(logger.RequestIDKey{}).(string)

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestID,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserPayload describes the full API view of a user account.
type UserPayload struct {
	ID         string         `json:"id"`
	Username   string         `json:"username"`
	Firstname  *string        `json:"firstname,omitempty"`
	Lastname   *string        `json:"lastname,omitempty"`
	Email      string         `json:"email"`
	Roles      []string       `json:"roles"`
	Status     string         `json:"status"`
	Avatar     *string        `json:"avatar,omitempty"`
	Prefs      map[string]any `json:"preferences,omitempty"`
	LastVisit  *time.Time     `json:"last_visit,omitempty"`
	LoginCount int            `json:"login_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RegisterRequest defines the self-service signup payload.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// RegisterResponse contains registration results and next steps.
type RegisterResponse struct {
	User      UserPayload `json:"user"`
	Message   string      `json:"message"`
	ExpiresAt *string     `json:"expires_at,omitempty"`
	// DevToken is only exposed in development mode. In production the
	// activation token travels by mail only.
	DevToken *string `json:"dev_token,omitempty"`
}

// ActivationRequest confirms an activation token for a pending account.
type ActivationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// ActivationResendRequest asks for a fresh activation token.
type ActivationResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ActivationResendResponse reports the outcome of a resend request.
type ActivationResendResponse struct {
	Message   string  `json:"message"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	DevToken  *string `json:"dev_token,omitempty"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Message string      `json:"message"`
	User    UserPayload `json:"user"`
}

// PasswordResetRequest represents a password reset initiation payload.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetResponse acknowledges the reset request without revealing
// whether the account exists.
type PasswordResetResponse struct {
	Message   string  `json:"message"`
	ExpiresAt *string `json:"expires_at,omitempty"`
	DevToken  *string `json:"dev_token,omitempty"`
}

// PasswordResetConfirmRequest captures a password reset confirmation payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PasswordChangeRequest captures a password change request body.
type PasswordChangeRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// AdminCreateUserRequest defines the payload for admin account creation.
type AdminCreateUserRequest struct {
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Roles     []string `json:"roles"`
	Status    string   `json:"status"`
}

// AdminUpdateUserRequest defines the partial-update payload for admin edits.
type AdminUpdateUserRequest struct {
	Username  *string  `json:"username,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Firstname *string  `json:"firstname,omitempty"`
	Lastname  *string  `json:"lastname,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Status    *string  `json:"status,omitempty"`
	Password  *string  `json:"password,omitempty"`
}

// AvatarUpdateRequest carries the avatar location for a user.
type AvatarUpdateRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

// UserListResponse wraps a page of users.
type UserListResponse struct {
	Users  []UserPayload `json:"users"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newUserPayload converts a domain user to its API representation.
func newUserPayload(user *domain.User) UserPayload {
	snapshot := user.Snapshot()

	payload := UserPayload{
		ID:         snapshot.ID,
		Username:   snapshot.Username,
		Email:      snapshot.Email,
		Roles:      snapshot.Roles,
		Status:     snapshot.Status,
		LoginCount: snapshot.LoginCount,
		CreatedAt:  snapshot.CreatedAt,
		UpdatedAt:  snapshot.UpdatedAt,
	}

	if snapshot.Firstname != nil {
		payload.Firstname = snapshot.Firstname
	}
	if snapshot.Lastname != nil {
		payload.Lastname = snapshot.Lastname
	}
	if snapshot.Avatar != "" {
		avatar := snapshot.Avatar
		payload.Avatar = &avatar
	}
	if len(snapshot.Preferences) > 0 {
		payload.Prefs = snapshot.Preferences
	}
	if !snapshot.LastVisit.IsZero() {
		lastVisit := snapshot.LastVisit
		payload.LastVisit = &lastVisit
	}

	return payload
}
