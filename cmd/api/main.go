package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/smartdept/budget/internal/audit"
	auditStore "github.com/smartdept/budget/internal/audit/store"
	"github.com/smartdept/budget/internal/auth"
	"github.com/smartdept/budget/internal/budget"
	budgetStore "github.com/smartdept/budget/internal/budget/store"
	"github.com/smartdept/budget/internal/config"
	"github.com/smartdept/budget/internal/dashboard"
	dashboardStore "github.com/smartdept/budget/internal/dashboard/store"
	"github.com/smartdept/budget/internal/database"
	"github.com/smartdept/budget/internal/expense"
	expenseStore "github.com/smartdept/budget/internal/expense/store"
	"github.com/smartdept/budget/internal/export"
	appHttp "github.com/smartdept/budget/internal/http"
	auditHandler "github.com/smartdept/budget/internal/http/audit"
	authHandler "github.com/smartdept/budget/internal/http/auth"
	budgetHandler "github.com/smartdept/budget/internal/http/budget"
	dashboardHandler "github.com/smartdept/budget/internal/http/dashboard"
	expenseHandler "github.com/smartdept/budget/internal/http/expense"
	exportHandler "github.com/smartdept/budget/internal/http/export"
	importHandler "github.com/smartdept/budget/internal/http/importcsv"
	vendorHandler "github.com/smartdept/budget/internal/http/vendor"
	"github.com/smartdept/budget/internal/importer"
	"github.com/smartdept/budget/internal/user"
	userStore "github.com/smartdept/budget/internal/user/store"
	"github.com/smartdept/budget/internal/vendors"
	vendorStore "github.com/smartdept/budget/internal/vendors/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var (
		auditService     = audit.NewService(auditStore.New(db))
		userService      = user.NewService(userStore.New(db), tokens)
		budgetService    = budget.NewService(budgetStore.New(db))
		expenseService   = expense.NewService(expenseStore.New(db), auditService)
		dashboardService = dashboard.NewService(budgetService, expenseService, dashboardStore.New(db))
		vendorService    = vendor.NewService(vendorStore.New(db))
		importService    = importer.NewService()
		exportService    = export.NewService(expenseService)
	)

	var (
		authH      = authHandler.NewHandler(userService)
		expenseH   = expenseHandler.NewHandler(expenseService)
		budgetH    = budgetHandler.NewHandler(budgetService)
		dashboardH = dashboardHandler.NewHandler(dashboardService)
		auditH     = auditHandler.NewHandler(auditService)
		importH    = importHandler.NewHandler(importService, expenseService, vendorService)
		vendorH    = vendorHandler.NewHandler(vendorService)
		exportH    = exportHandler.NewHandler(exportService)
	)

	router := appHttp.New(tokens, authH, expenseH, budgetH, dashboardH, auditH, importH, vendorH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
