package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voicedesk/callcenter-api/internal/api/handler"
	"github.com/voicedesk/callcenter-api/internal/api/middleware"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
	"github.com/voicedesk/callcenter-api/internal/core/service"
	"github.com/voicedesk/callcenter-api/internal/infrastructure/config"
	mongodb "github.com/voicedesk/callcenter-api/internal/infrastructure/db/mongo"
	redisdb "github.com/voicedesk/callcenter-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, registry ports.TokenRegistry, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("callcenter"))
	e.Use(middleware.RateLimit(redisdb.NewWindowCounter(rdb), cfg.RateLimitMax, cfg.RateLimitWindow, log))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := service.NewBcryptHasher()
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, registry, log)
	authService := service.NewAuthService(userRepo, tokenService, registry, hasher, log)
	userService := service.NewUserService(userRepo, hasher, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	authRequired := middleware.Auth(tokenService)
	adminOnly := middleware.RequireAdmin()
	ownerOrAdmin := middleware.RequireOwnershipOrAdmin()

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	apiGroup := e.Group("/api")

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	apiGroup.GET("/health", healthHandler.Liveness)
	apiGroup.GET("/health/ready", readinessHandler.Readiness)

	// --- Session routes ---
	auth := apiGroup.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authRequired)
	auth.POST("/logout-all", authHandler.LogoutAll, authRequired)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.PUT("/change-password", authHandler.ChangePassword, authRequired)

	// --- User routes ---
	apiGroup.POST("/users", userHandler.Create)
	apiGroup.POST("/admin/users", userHandler.CreateByAdmin, authRequired, adminOnly)

	users := apiGroup.Group("/users", authRequired)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/:username", userHandler.Get, ownerOrAdmin)
	users.PUT("/:username", userHandler.Update, ownerOrAdmin)
	users.DELETE("/:username", userHandler.Delete, adminOnly)
	users.PUT("/:username/api-key", userHandler.SetAPIKey, ownerOrAdmin)
	users.GET("/:username/api-key/:keyType", userHandler.GetAPIKey, ownerOrAdmin)
	users.PUT("/:username/2fa", userHandler.SetTwoFA, ownerOrAdmin)
	users.GET("/:username/2fa", userHandler.GetTwoFA, ownerOrAdmin)
	users.PUT("/:username/last-login", userHandler.TouchLastLogin, ownerOrAdmin)

	return e
}
