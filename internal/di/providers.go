package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/docuchat/auth-service/internal/app"
	"github.com/docuchat/auth-service/internal/config"
	"github.com/docuchat/auth-service/internal/database"
	"github.com/docuchat/auth-service/internal/health"
	"github.com/docuchat/auth-service/internal/http/handler"
	"github.com/docuchat/auth-service/internal/http/middleware"
	"github.com/docuchat/auth-service/internal/http/router"
	"github.com/docuchat/auth-service/internal/observability"
	"github.com/docuchat/auth-service/internal/repository"
	"github.com/docuchat/auth-service/internal/security"
	"github.com/docuchat/auth-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
)

var SecuritySet = wire.NewSet(
	providePasswordHasher,
	provideJWTManager,
)

var ServiceSet = wire.NewSet(
	provideAuthService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	provideAPIRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

type APIRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func providePasswordHasher(cfg *config.Config) (*security.PasswordHasher, error) {
	return security.NewPasswordHasher(cfg.BcryptCost)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
}

func provideAuthService(
	userRepo repository.UserRepository,
	hasher *security.PasswordHasher,
	jwtMgr *security.JWTManager,
	cfg *config.Config,
) *service.AuthService {
	return service.NewAuthService(userRepo, hasher, jwtMgr, cfg.AllowedEmailDomain)
}

func provideAuthHandler(authSvc service.AuthServiceInterface, cfg *config.Config) *handler.AuthHandler {
	return handler.NewAuthHandler(authSvc, cfg.AllowedEmailDomain)
}

func provideAPIRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) APIRateLimiterFunc {
	if redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rl:api")
		return middleware.NewRateLimiter(redisLimiter, cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, "api").Middleware()
	}
	return middleware.NewRateLimiter(middleware.NewLocalFixedWindowLimiter(), cfg.APIRateLimitPerMin, time.Minute, middleware.FailClosed, "api").Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) AuthRateLimiterFunc {
	if redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rl:auth")
		return middleware.NewRateLimiter(redisLimiter, cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, "auth").Middleware()
	}
	return middleware.NewRateLimiter(middleware.NewLocalFixedWindowLimiter(), cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, "auth").Middleware()
}

func provideReadinessProbeRunner(db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if c := health.NewRedisChecker(redisClient); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(2*time.Second, 0, checkers...)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	apiRateLimiter APIRateLimiterFunc,
	authRateLimiter AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		MaxBodyBytes:     cfg.MaxBodyBytes,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
		AuthRateLimiter:  authRateLimiter,
		APIRateLimiter:   apiRateLimiter,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
