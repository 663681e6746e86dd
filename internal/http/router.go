package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authsvc "github.com/smartdept/budget/internal/auth"
	"github.com/smartdept/budget/internal/http/audit"
	"github.com/smartdept/budget/internal/http/auth"
	"github.com/smartdept/budget/internal/http/budget"
	"github.com/smartdept/budget/internal/http/dashboard"
	"github.com/smartdept/budget/internal/http/expense"
	"github.com/smartdept/budget/internal/http/export"
	"github.com/smartdept/budget/internal/http/importcsv"
	mw "github.com/smartdept/budget/internal/http/middleware"
	"github.com/smartdept/budget/internal/http/vendor"
	"github.com/smartdept/budget/internal/user"
)

func New(
	tokens *authsvc.Manager,
	authV1 *auth.Handler,
	expensesV1 *expense.Handler,
	budgetsV1 *budget.Handler,
	dashboardV1 *dashboard.Handler,
	auditV1 *audit.Handler,
	importV1 *importcsv.Handler,
	vendorsV1 *vendor.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticator(tokens))

			r.Get("/auth/me", authV1.Me)

			r.Route("/expenses", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				expensesV1.Routes(r)
			})

			r.Route("/categories", budgetsV1.CategoryRoutes)

			r.Route("/dashboard", dashboardV1.Routes)

			r.Route("/budgets", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				r.Use(mw.RequireRole(user.Role.CanDelete))
				budgetsV1.Routes(r)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Use(mw.RequireRole(user.Role.CanDelete))
				auditV1.Routes(r)
			})

			r.Route("/import", func(r chi.Router) {
				r.Use(mw.RequireRole(user.Role.CanDecide))
				importV1.Routes(r)
			})

			r.Route("/vendors", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				r.Use(mw.RequireRole(user.Role.CanDecide))
				vendorsV1.Routes(r)
			})

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				r.Use(mw.RequireRole(user.Role.CanDecide))
				exportV1.Routes(r)
			})
		})
	})

	return router
}
