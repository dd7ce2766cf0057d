package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkcamara/graniteledger-backend/api/controllers"
	"github.com/mkcamara/graniteledger-backend/api/middleware"
	authsvc "github.com/mkcamara/graniteledger-backend/internal/auth"
	deliverysvc "github.com/mkcamara/graniteledger-backend/internal/deliveries"
	paymentsvc "github.com/mkcamara/graniteledger-backend/internal/payments"
	reportsvc "github.com/mkcamara/graniteledger-backend/internal/reports"
	settingssvc "github.com/mkcamara/graniteledger-backend/internal/settings"
	usersvc "github.com/mkcamara/graniteledger-backend/internal/users"
	"github.com/mkcamara/graniteledger-backend/pkg/auth/session"
	"github.com/mkcamara/graniteledger-backend/pkg/config"
	"github.com/mkcamara/graniteledger-backend/pkg/db"
	"github.com/mkcamara/graniteledger-backend/pkg/logger"
	"github.com/mkcamara/graniteledger-backend/pkg/metrics"
	"github.com/mkcamara/graniteledger-backend/pkg/redis"
)

// Services bundles the domain layer the router exposes.
type Services struct {
	Auth       authsvc.Service
	Deliveries deliverysvc.Service
	Payments   paymentsvc.Service
	Settings   settingssvc.Service
	Users      usersvc.Service
	Reports    reportsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	// A typed nil *redis.Client must stay nil once boxed in the middleware
	// interfaces, otherwise their nil checks pass and calls panic.
	var idemStore redis.IdempotencyStore
	var rateStore middleware.RateLimiterStore
	var cachePinger redis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		rateStore = redisClient
		cachePinger = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Post("/auth/change-password", controllers.AuthChangePassword(svcs.Auth, logg))

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", controllers.ListDeliveries(svcs.Deliveries, logg))
			r.Post("/", controllers.CreateDelivery(svcs.Deliveries, logg))
			r.Route("/{deliveryID}", func(r chi.Router) {
				r.Get("/", controllers.GetDelivery(svcs.Deliveries, logg))
				r.Put("/", controllers.UpdateDelivery(svcs.Deliveries, logg))
				r.Delete("/", controllers.DeleteDelivery(svcs.Deliveries, logg))
				r.Route("/payments", func(r chi.Router) {
					r.Get("/", controllers.ListPayments(svcs.Payments, logg))
					r.Post("/", controllers.AddPayment(svcs.Payments, logg))
					r.Delete("/{paymentID}", controllers.DeletePayment(svcs.Payments, logg))
				})
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/statement", controllers.Statement(svcs.Reports, logg))
			r.Get("/statement/export", controllers.ExportStatement(svcs.Reports, logg))
			r.Get("/dashboard", controllers.Dashboard(svcs.Reports, logg))
		})

		r.Get("/settings", controllers.GetSettings(svcs.Settings, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))

			r.Put("/settings", controllers.UpdateSettings(svcs.Settings, logg))
			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.ListUsers(svcs.Users, logg))
				r.Post("/", controllers.CreateUser(svcs.Users, logg))
				r.Patch("/{userID}/active", controllers.SetUserActive(svcs.Users, logg))
			})
		})
	})

	return r
}
