// Package routes wires middlewares, backends, services and handlers into the
// Fiber application.
package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlasbank/atlasbank/internal/accounts"
	"github.com/atlasbank/atlasbank/internal/auth"
	"github.com/atlasbank/atlasbank/internal/config"
	"github.com/atlasbank/atlasbank/internal/customers"
	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/loans"
	"github.com/atlasbank/atlasbank/internal/middleware"
	"github.com/atlasbank/atlasbank/internal/notification"
	"github.com/atlasbank/atlasbank/internal/teller"
	"github.com/atlasbank/atlasbank/internal/transfers"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Backends: Postgres when a pool is present, in-memory otherwise.
	var (
		ledgerBackend ledger.Ledger
		loanStore     loans.Store
		customerRepo  customers.Repository
		adminRepo     customers.AdminRepository
	)
	if d.DB != nil {
		pgLedger := ledger.NewPostgresLedger(d.DB, d.Cfg.LockTimeout)
		ledgerBackend = pgLedger
		loanStore = loans.NewPostgresStore(d.DB, pgLedger)
		customerRepo = customers.NewPostgresRepository(d.DB)
		adminRepo = customers.NewPostgresAdminRepository(d.DB)
	} else {
		memLedger := ledger.NewMemory()
		ledgerBackend = memLedger
		loanStore = loans.NewMemoryStore(memLedger)
		customerRepo = customers.NewMemoryRepository()
		adminRepo = customers.NewMemoryAdminRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	accountSvc := accounts.NewService(ledgerBackend)
	tellerSvc := teller.NewService(ledgerBackend)
	transferSvc := transfers.NewService(ledgerBackend, notifier, d.Logger)
	loanSvc := loans.NewService(loanStore, ledgerBackend, notifier)
	customerSvc := customers.NewService(customerRepo, adminRepo, ledgerBackend, loanSvc)
	authSvc := auth.NewService(d.Cfg)

	if err := customerSvc.EnsureAdmin(context.Background(), d.Cfg.AdminUsername, d.Cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	accountHandler := accounts.NewHandler(accountSvc)
	tellerHandler := teller.NewHandler(tellerSvc)
	transferHandler := transfers.NewHandler(transferSvc)
	loanHandler := loans.NewHandler(loanSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterCustomerRoutes(api, customerSvc, accountSvc, authSvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, customerSvc, authSvc, rateLimiter)

	// Money movement replays the stored response instead of posting twice.
	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}

	customerArea := api.Group("", middleware.RequireRole(d.Cfg, auth.RoleCustomer))
	RegisterProfileRoutes(customerArea, customerSvc)
	RegisterAccountRoutes(customerArea, accountHandler)
	RegisterTellerRoutes(customerArea, tellerHandler, idem)
	RegisterTransferRoutes(customerArea, transferHandler, idem)
	RegisterLoanRoutes(customerArea, loanHandler)

	adminArea := api.Group("/admin", middleware.RequireRole(d.Cfg, auth.RoleAdmin))
	RegisterAdminLoanRoutes(adminArea, loanHandler, idem)

	return nil
}
