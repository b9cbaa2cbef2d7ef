package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/ess-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/ess-backend-go/internal/repository/postgresql"
	hierarchyService "github.com/cmlabs-hris/ess-backend-go/internal/service/hierarchy"
	leaveService "github.com/cmlabs-hris/ess-backend-go/internal/service/leave"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ess-cmlabs"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = database.NewRedisClient(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		slog.Warn("REDIS_ADDR not set, Idempotency-Key handling disabled")
	}

	userRepo := postgresql.NewUserRepository(db)
	transactor := postgresql.NewTransactor(db)

	leaveSvc := leaveService.NewLeaveService(transactor, leaveService.Repositories{
		Users:        userRepo,
		Applications: postgresql.NewLeaveApplicationRepository(db),
		Balances:     postgresql.NewLeaveBalanceRepository(db),
		Policies:     postgresql.NewRoleLeavePolicyRepository(db),
		Holidays:     postgresql.NewHolidayRepository(db),
		Attendance:   postgresql.NewAttendanceRepository(db),
	}, cfg.Location())
	hierarchySvc := hierarchyService.NewHierarchyService(transactor, userRepo)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewLeaveApprovalHandler(leaveSvc),
		appHTTP.NewHierarchyHandler(hierarchySvc),
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			Redis:          rdb,
			IdempotencyTTL: cfg.Redis.IdempotencyTTL,
			RateLimiter:    middleware.NewUserRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("Server exited gracefully")
	return nil
}
