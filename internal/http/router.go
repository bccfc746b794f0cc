package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/cache"
	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/handlers"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const authRequestsPerMinute = 10

type UsersStore interface {
	handlers.UserStore
	handlers.AdminUsers
}

type ResourcesStore interface {
	handlers.ResourcesRepo
	handlers.AdminResources
}

type BookingService interface {
	handlers.BookingManager
	handlers.ConflictChecker
}

type BookingsStore interface {
	handlers.BookingsReader
	handlers.ResourceBookings
	handlers.AdminBookings
}

// Deps is everything the API needs; cmd/api wires the postgres versions.
type Deps struct {
	Config   config.Config
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	DB       handlers.Pinger

	JWT      *auth.Manager
	Sessions *auth.Sessions
	Cache    cache.Store

	Manager   BookingService
	Users     UsersStore
	Refresh   handlers.RefreshTokenStore
	Resources ResourcesStore
	Bookings  BookingsStore
	Messages  handlers.MessagesRepo
	Reviews   handlers.ReviewsRepo
	Jobs      handlers.AdminJobs
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	cfg := d.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("campushub-api"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders(cfg.IsProduction()))
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	handlers.RegisterValidators()

	// health + metrics
	health := handlers.NewHealthHandler(d.DB)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	var sessions middlewares.SessionReader
	if d.Sessions != nil {
		sessions = d.Sessions
	}
	authMW := middlewares.NewAuthMiddleware(d.JWT, sessions)

	var counter middlewares.WindowCounter
	if wc, ok := d.Cache.(middlewares.WindowCounter); ok {
		counter = wc
	}
	limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute,
		middlewares.WithCounter(counter), middlewares.WithKeyPrefix("rl:api:"))
	authLimiter := middlewares.NewRateLimiter(authRequestsPerMinute, time.Minute,
		middlewares.WithCounter(counter), middlewares.WithKeyPrefix("rl:auth:"))

	authHandler := handlers.NewAuthHandler(d.Users, d.JWT, d.Sessions, d.Refresh, cfg)
	resourcesHandler := handlers.NewResourcesHandler(d.Resources, d.Bookings, d.Reviews, d.Cache)
	reviewsHandler := handlers.NewReviewsHandler(d.Reviews, d.Resources)
	bookingsHandler := handlers.NewBookingsHandler(d.Manager, d.Bookings, d.Resources)
	availabilityHandler := handlers.NewAvailabilityHandler(d.Manager, d.Resources)
	messagesHandler := handlers.NewMessagesHandler(d.Messages, d.Bookings, d.Resources)
	adminHandler := handlers.NewAdminHandler(d.Bookings, d.Resources, d.Users, d.Jobs)

	// auth
	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	// public browsing
	public := r.Group("/")
	public.Use(authMW.OptionalAuth(), limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	public.GET("/resources", resourcesHandler.List)
	public.GET("/resources/:id", resourcesHandler.Get)
	public.GET("/resources/:id/bookings", resourcesHandler.Feed)
	public.GET("/resources/:id/availability", availabilityHandler.Check)
	public.GET("/resources/:id/reviews", reviewsHandler.List)

	// signed in
	protected := r.Group("/")
	protected.Use(authMW.RequireAuth(), limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	protected.GET("/me", authHandler.Me)

	protected.POST("/resources/:id/reviews", reviewsHandler.Create)

	protected.POST("/bookings", bookingsHandler.Create)
	protected.GET("/bookings", bookingsHandler.ListMine)
	protected.GET("/bookings/pending", middlewares.RequireRole(user.RoleStaff), bookingsHandler.ListPending)
	protected.GET("/bookings/:id", bookingsHandler.Get)
	protected.POST("/bookings/:id/cancel", bookingsHandler.Cancel)
	protected.PATCH("/bookings/:id/status", bookingsHandler.SetStatus)
	protected.GET("/bookings/:id/messages", messagesHandler.List)
	protected.POST("/bookings/:id/messages", messagesHandler.Create)

	// staff
	staff := protected.Group("/")
	staff.Use(middlewares.RequireRole(user.RoleStaff))
	staff.POST("/resources", resourcesHandler.Create)
	staff.PUT("/resources/:id", resourcesHandler.Update)
	staff.PATCH("/resources/:id/availability", resourcesHandler.SetAvailability)

	// admin
	admin := protected.Group("/admin")
	admin.Use(middlewares.RequireRole(user.RoleAdmin))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.PATCH("/users/:id/role", adminHandler.UpdateUserRole)
	admin.GET("/jobs/:id", adminHandler.GetJob)
	admin.POST("/jobs/:id/retry", adminHandler.RetryJob)

	return r
}
