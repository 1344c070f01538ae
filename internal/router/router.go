package router

import (
	"context"
	"net/http"
	"time"

	accthandler "github.com/barberkas/api/internal/accounting/handler"
	"github.com/barberkas/api/internal/config"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/handler"
	"github.com/barberkas/api/internal/metrics"
	mw "github.com/barberkas/api/internal/middleware"
	"github.com/barberkas/api/internal/service"
	"github.com/barberkas/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

// Services are the transactional services shared by the HTTP routes and the
// background scheduler.
type Services struct {
	Checkout   *service.CheckoutService
	Cashflow   *service.CashflowService
	Expense    *service.ExpenseService
	Salary     *service.SalaryService
	Attendance *service.AttendanceService
	Closing    *service.ClosingService
}

// NewServices builds every service on pool. Each service opens its own
// transaction and runs its queries through database.New(tx).
func NewServices(pool *pgxpool.Pool, hub *ws.Hub, m *metrics.Metrics) *Services {
	return &Services{
		Checkout: service.NewCheckoutService(pool, func(db database.DBTX) service.CheckoutStore {
			return database.New(db)
		}, hub, m),
		Cashflow: service.NewCashflowService(pool, func(db database.DBTX) service.CashflowStore {
			return database.New(db)
		}, hub),
		Expense: service.NewExpenseService(pool, func(db database.DBTX) service.ExpenseStore {
			return database.New(db)
		}, hub),
		Salary: service.NewSalaryService(pool, func(db database.DBTX) service.SalaryStore {
			return database.New(db)
		}, hub, m),
		Attendance: service.NewAttendanceService(pool, func(db database.DBTX) service.AttendanceStore {
			return database.New(db)
		}, hub),
		Closing: service.NewClosingService(pool, func(db database.DBTX) service.ClosingStore {
			return database.New(db)
		}, hub, m),
	}
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, branch scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, m *metrics.Metrics, svc *Services) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(mw.Instrument(m))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("health: ping database")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.Auth.JWTSecret, m)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/branches/{bid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.Auth.JWTSecret, w, r)
	})

	branchHandler := handler.NewBranchHandler(queries, svc.Cashflow)
	userHandler := handler.NewUserHandler(queries)
	barberHandler := handler.NewBarberHandler(queries)
	catalogHandler := handler.NewCatalogHandler(queries)
	customerHandler := handler.NewCustomerHandler(queries)
	trxHandler := handler.NewTransactionHandler(svc.Checkout, queries)
	attendanceHandler := handler.NewAttendanceHandler(svc.Attendance, queries)
	reportsHandler := handler.NewReportsHandler(queries)

	cashHandler := accthandler.NewCashHandler(svc.Cashflow, queries)
	expenseHandler := accthandler.NewExpenseHandler(svc.Expense, queries)
	salaryHandler := accthandler.NewSalaryHandler(svc.Salary, queries)
	closingHandler := accthandler.NewClosingHandler(svc.Closing, queries)
	dashboardHandler := accthandler.NewDashboardHandler(queries)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.Auth.JWTSecret))
		authHandler.RegisterMeRoute(r)

		r.Route("/branches", func(r chi.Router) {
			// Branch CRUD is OWNER-only and not branch-scoped.
			r.Group(ownerOnly(branchHandler.RegisterRoutes))

			// Branch-scoped routes. Reads are open to every role in the branch;
			// writes under each resource need OWNER or ADMIN.
			r.Route("/{bid}", func(r chi.Router) {
				r.Use(mw.RequireBranch)

				r.Group(ownerOnly(branchHandler.RegisterItemRoutes))

				r.Route("/users", adminOnly(userHandler.RegisterRoutes))
				r.Route("/barbers", split(barberHandler.RegisterRoutes, barberHandler.RegisterAdminRoutes))
				r.Route("/catalog", split(catalogHandler.RegisterRoutes, catalogHandler.RegisterAdminRoutes))
				r.Route("/customers", split(customerHandler.RegisterRoutes, customerHandler.RegisterAdminRoutes))
				r.Route("/transactions", split(trxHandler.RegisterRoutes, trxHandler.RegisterAdminRoutes))
				r.Route("/attendance", split(attendanceHandler.RegisterRoutes, attendanceHandler.RegisterAdminRoutes))

				r.Route("/cash-accounts", split(cashHandler.RegisterAccountRoutes, cashHandler.RegisterAccountAdminRoutes))
				r.Route("/cash-transfers", adminOnly(cashHandler.RegisterTransferRoutes))
				r.Route("/cash-movements", adminOnly(cashHandler.RegisterMovementRoutes))

				r.Route("/expense-categories", split(expenseHandler.RegisterCategoryRoutes, expenseHandler.RegisterCategoryAdminRoutes))
				r.Route("/expenses", split(expenseHandler.RegisterExpenseRoutes, expenseHandler.RegisterExpenseAdminRoutes))

				r.Route("/salary/periods", adminOnly(salaryHandler.RegisterPeriodRoutes))
				r.Route("/salary/debts", adminOnly(salaryHandler.RegisterDebtRoutes))

				r.Route("/closings", adminOnly(func(r chi.Router) {
					closingHandler.RegisterRoutes(r)
					closingHandler.RegisterAdminRoutes(r)
				}))

				r.Route("/dashboard", adminOnly(dashboardHandler.RegisterRoutes))
				r.Route("/reports", adminOnly(reportsHandler.RegisterRoutes))
			})
		})
	})

	return r
}

func backOffice() func(http.Handler) http.Handler {
	return mw.RequireRole(enum.UserRoleOwner, enum.UserRoleAdmin)
}

// ownerOnly mounts register behind OWNER.
func ownerOnly(register func(chi.Router)) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(mw.RequireRole(enum.UserRoleOwner))
		register(r)
	}
}

// adminOnly mounts register behind OWNER/ADMIN.
func adminOnly(register func(chi.Router)) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(backOffice())
		register(r)
	}
}

// split mounts read for everyone and admin behind OWNER/ADMIN on one sub-router.
func split(read, admin func(chi.Router)) func(chi.Router) {
	return func(r chi.Router) {
		read(r)
		r.Group(func(r chi.Router) {
			r.Use(backOffice())
			admin(r)
		})
	}
}
