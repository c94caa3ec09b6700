package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/docuchat/auth-service/internal/health"
	"github.com/docuchat/auth-service/internal/http/handler"
	"github.com/docuchat/auth-service/internal/http/middleware"
	"github.com/docuchat/auth-service/internal/http/response"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	CORSOrigins      []string
	MaxBodyBytes     int64
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	AuthRateLimiter  func(http.Handler) http.Handler
	APIRateLimiter   func(http.Handler) http.Handler
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	maxBody := dep.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(middleware.BodyLimit(maxBody))

	apiLimiter := dep.APIRateLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewRateLimiter(
			middleware.NewLocalFixedWindowLimiter(), dep.APIRateLimitRPM, time.Minute, middleware.FailClosed, "api",
		).Middleware()
	}
	r.Use(apiLimiter)

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(
			middleware.NewLocalFixedWindowLimiter(), dep.AuthRateLimitRPM, time.Minute, middleware.FailClosed, "auth",
		).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "unready", "checks": results})
	})

	r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
	r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
	r.With(authLimiter).Post("/reset-password", dep.AuthHandler.ResetPassword)

	if dep.EnableOTelHTTP {
		return otelhttp.NewHandler(r, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return req.Method + " " + req.URL.Path
			}),
		)
	}
	return r
}
