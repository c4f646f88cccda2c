package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/infra/logger"
)

// ActivationNotification carries the activation token delivery details.
type ActivationNotification struct {
	Email     string
	Username  string
	Token     string
	ExpiresAt time.Time
}

// PasswordResetNotification carries the reset token delivery details.
type PasswordResetNotification struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// NotificationDispatcher fans out token deliveries to downstream notifiers.
type NotificationDispatcher interface {
	SendActivationToken(ctx context.Context, payload ActivationNotification) error
	SendPasswordReset(ctx context.Context, payload PasswordResetNotification) error
}

type noopDispatcher struct{}

func (noopDispatcher) SendActivationToken(ctx context.Context, payload ActivationNotification) error {
	return nil
}

func (noopDispatcher) SendPasswordReset(ctx context.Context, payload PasswordResetNotification) error {
	return nil
}

// LoggingNotificationDispatcher records token dispatch events for observability
// without delivering them. Tokens and addresses are masked.
type LoggingNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLoggingNotificationDispatcher constructs a notification dispatcher backed by structured logging.
func NewLoggingNotificationDispatcher(log *zap.Logger) NotificationDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingNotificationDispatcher{logger: log}
}

func (d *LoggingNotificationDispatcher) SendActivationToken(ctx context.Context, payload ActivationNotification) error {
	d.logger.Info("activation token dispatched",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.String("username", payload.Username),
		zap.String("token", logger.MaskToken(payload.Token)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}

func (d *LoggingNotificationDispatcher) SendPasswordReset(ctx context.Context, payload PasswordResetNotification) error {
	d.logger.Info("password reset token dispatched",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.String("token", logger.MaskToken(payload.Token)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}
