package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/social-feed-api/internal/application/auth"
	"github.com/social-feed-api/internal/application/passcode"
	"github.com/social-feed-api/internal/application/session"
	"github.com/social-feed-api/internal/application/user"
	"github.com/social-feed-api/internal/config"
	jwtinfra "github.com/social-feed-api/internal/infrastructure/jwt"
	"github.com/social-feed-api/internal/observability/metrics"
	"github.com/social-feed-api/internal/transport/http/handler"
	appmiddleware "github.com/social-feed-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	SessionRepo SessionRepository
	Delivery    DeliveryGateway
	JWTProvider *jwtinfra.Provider
	Logger      *slog.Logger
	// RateLimiter guards register, send-otp and login. Built from cfg when nil.
	RateLimiter *appmiddleware.RateLimiter
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(appmiddleware.AccessLog(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sensitiveRL := deps.RateLimiter
	if sensitiveRL == nil {
		sensitiveRL = appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	passcodes := passcode.NewService(deps.UserRepo, cfg.OTPTTL, cfg.OTPDigits)
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Passcodes:   passcodes,
		Delivery:    deps.Delivery,
		JWTProvider: deps.JWTProvider,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:  deps.UserRepo,
		Passcodes: passcodes,
		Delivery:  deps.Delivery,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
	})

	healthH := handler.NewHealthHandler(cfg.StoreDriver)
	authH := handler.NewAuthHandler(authSvc, userSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/send-otp", authH.SendOTP)
			r.Post("/auth/login", authH.Login)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Get("/users/{id}", userH.Get)
		})
	})

	return r
}
