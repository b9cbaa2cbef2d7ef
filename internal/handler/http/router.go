package http

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Redis enables Idempotency-Key handling on leave submission when set.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	RateLimiter    *middleware.UserRateLimiter
}

func NewRouter(
	jwtService jwt.Service,
	leaveHandler LeaveHandler,
	approvalHandler LeaveApprovalHandler,
	hierarchyHandler HierarchyHandler,
	opts RouterOptions,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{middleware.ReplayedHeader},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// writes are rate limited and, when Redis is configured, idempotent
	writeGuards := func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/leave", func(r chi.Router) {
				r.Get("/my-leaves", leaveHandler.MyLeaves)
				r.Get("/balance", leaveHandler.Balance)
				r.Get("/{id}", leaveHandler.Get)

				r.Group(func(r chi.Router) {
					writeGuards(r)
					if opts.Redis != nil {
						r.Use(middleware.Idempotency(opts.Redis, opts.IdempotencyTTL))
					}
					r.Post("/apply", leaveHandler.Apply)
				})

				r.Group(func(r chi.Router) {
					writeGuards(r)
					r.Delete("/{id}/cancel", leaveHandler.Cancel)
				})
			})

			r.Route("/leave-approval", func(r chi.Router) {
				r.Use(middleware.ManagerOrAdmin)

				r.Get("/pending", approvalHandler.Pending)
				r.Get("/team-calendar", approvalHandler.TeamCalendar)

				r.Group(func(r chi.Router) {
					writeGuards(r)
					r.Post("/{id}/approve", approvalHandler.Approve)
					r.Post("/{id}/reject", approvalHandler.Reject)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/managers", hierarchyHandler.ListManagers)
				r.Get("/{id}/hierarchy", hierarchyHandler.GetHierarchy)

				r.Group(func(r chi.Router) {
					writeGuards(r)

					// Admin only
					r.With(middleware.AdminOnly).Patch("/{id}/make-head-manager", hierarchyHandler.MakeHeadManager)

					// Head manager checks happen in the service against the stored user
					r.Patch("/{id}/make-manager", hierarchyHandler.MakeManager)
					r.Patch("/{employeeId}/assign-manager", hierarchyHandler.AssignManager)
				})
			})
		})
	})
	return r
}
