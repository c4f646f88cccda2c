package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/infra/config"
	"github.com/eddy-neller/shop-api-sub001/internal/transport/http/handlers"
	"github.com/eddy-neller/shop-api-sub001/internal/transport/http/middleware"
	"github.com/eddy-neller/shop-api-sub001/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	Users         *usecase.UserService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{"*"}))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	if deps.Config.Telemetry.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"
		notificationDispatcher := handlers.NewLoggingNotificationDispatcher(deps.Logger)

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup, buildRateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts)...)

		userGroup := api.Group("/user")
		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, notificationDispatcher, isDev)

		registerHandlers := buildRateLimit(deps, "register_ip", deps.Config.RateLimit.RegisterMaxAttempts)
		registerHandlers = append(registerHandlers, registrationHandler.Register)
		userGroup.POST("/register", registerHandlers...)

		userGroup.POST("/activate", registrationHandler.Activate)

		resendHandlers := buildRateLimit(deps, "activation_resend_ip", deps.Config.RateLimit.ActivationMaxAttempts)
		resendHandlers = append(resendHandlers, registrationHandler.ResendActivation)
		userGroup.POST("/activation/resend", resendHandlers...)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, notificationDispatcher, isDev)

		passwordGroup := api.Group("/password")
		passwordGroup.POST("/change", passwordHandler.ChangePassword)

		resetGroup := passwordGroup.Group("/reset")
		if resetMiddlewares := buildRateLimit(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts); len(resetMiddlewares) > 0 {
			resetGroup.Use(resetMiddlewares...)
		}
		resetGroup.POST("/request", passwordHandler.ResetPassword)
		resetGroup.POST("/confirm", passwordHandler.ConfirmReset)

		usersGroup := api.Group("/users")
		userHandler := handlers.NewUserHandler(deps.Services.Users, deps.Services.Registration)
		userHandler.RegisterRoutes(usersGroup)
	}

	return r
}

func buildRateLimit(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
