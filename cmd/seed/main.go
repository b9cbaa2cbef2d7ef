package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/config"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ess-backend-go/internal/repository/postgresql"
)

// Seeds default roles, leave types, role policies and holidays for one tenant.
func main() {
	tenantID := flag.String("tenant", "", "tenant UUID to seed")
	year := flag.Int("year", time.Now().Year(), "holiday calendar year")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if !validator.IsValidUUID(*tenantID) {
		slog.Error("-tenant must be a valid UUID", "tenant", *tenantID)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ids, err := postgresql.SeedTenantDefaults(context.Background(), db, *tenantID, *year)
	if err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Tenant defaults seeded",
		"tenant", *tenantID,
		"roles", ids.RoleIDs,
		"leave_types", ids.LeaveTypeIDs,
		"holidays_created", ids.HolidaysCreated,
	)
}
