/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. CORS:       Cross-origin requests for the frontend
  2. RequestID:  Unique ID per request for tracing
  3. httplog:    Structured request logging (ECS schema)
  4. CleanPath:  Collapses double slashes
  5. Recoverer:  Panic recovery (500 instead of crash)
  6. Heartbeat:  GET /health for load balancers

AUTHENTICATION:
  With Options.Auth set, every /api route needs a bearer token and each
  route group is gated on one module of the caller's role:

    /api/employees, /attendance, /absences, /sanctions, /holidays   hr
    /api/shifts                                                     ops
    /api/inventory                                                  inventory
    /api/products, /calculator, /projections, /partners,
    /api/wallet, /expenses                                          finance
    /api/scenarios                                                  admin

  Without it the API is open and every caller acts as admin.

SEE ALSO:
  - handlers.go: Handler and shared helpers
  - auth.go: token issuing and role gates
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/parrilla/backoffice/access"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	// Auth enables bearer tokens and role gates. Nil leaves the API open.
	Auth *Auth
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	auth := opts.Auth

	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.verify)
		r.Use(auth.authenticated)

		r.Get("/me", h.Me)

		// Payroll routes
		r.Group(func(r chi.Router) {
			r.Use(auth.require(access.ModuleHR))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Put("/{id}", h.UpdateEmployee)
				r.Delete("/{id}", h.ArchiveEmployee)
				r.Get("/{id}/summary", h.GetSummary)
			})
			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.ListAttendance)
				r.Post("/", h.RecordAttendance)
				r.Post("/pay-all", h.PayAllAttendance)
				r.Put("/{id}/paid", h.SetAttendancePaid)
				r.Delete("/{id}", h.DeleteAttendance)
			})
			r.Route("/absences", func(r chi.Router) {
				r.Get("/", h.ListAbsences)
				r.Post("/", h.RecordAbsence)
				r.Delete("/{id}", h.DeleteAbsence)
			})
			r.Route("/sanctions", func(r chi.Router) {
				r.Get("/", h.ListSanctions)
				r.Post("/", h.RecordSanction)
				r.Delete("/{id}", h.DeleteSanction)
			})
			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.ListHolidays)
				r.Post("/", h.CreateHoliday)
				r.Delete("/{id}", h.DeleteHoliday)
			})
		})

		// Cash shift routes
		r.With(auth.require(access.ModuleOps)).Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.OpenShift)
			r.Get("/current", h.CurrentShift)
			r.Post("/current/transactions", h.RecordTransaction)
			r.Post("/current/close", h.CloseShift)
			r.Get("/{id}/report", h.GetShiftReport)
		})

		// Inventory routes
		r.With(auth.require(access.ModuleInventory)).Route("/inventory", func(r chi.Router) {
			r.Get("/", h.ListInventory)
			r.Post("/", h.OpenInventory)
			r.Get("/current", h.CurrentInventory)
			r.Post("/current/close", h.CloseInventory)
			r.Get("/{id}", h.GetInventory)
		})

		// Finance routes
		r.Group(func(r chi.Router) {
			r.Use(auth.require(access.ModuleFinance))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
			r.Post("/calculator/quote", h.Quote)
			r.Route("/projections", func(r chi.Router) {
				r.Get("/", h.ListProjections)
				r.Post("/", h.CloseProjection)
			})
			r.Route("/partners", func(r chi.Router) {
				r.Get("/", h.ListPartners)
				r.Post("/", h.CreatePartner)
				r.Get("/royalties", h.RoyaltySummary)
				r.Put("/{id}", h.UpdatePartner)
				r.Delete("/{id}", h.DeletePartner)
				r.Post("/{id}/payments", h.PayRoyalty)
			})
			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.ListWallet)
				r.Post("/", h.RecordWallet)
				r.Get("/balance", h.WalletBalance)
				r.Delete("/{id}", h.VoidWallet)
			})
			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.ListExpenses)
				r.Post("/", h.CreateExpense)
				r.Put("/{id}", h.UpdateExpense)
				r.Delete("/{id}", h.DeleteExpense)
				r.Post("/{id}/payments", h.PayExpense)
			})
		})

		// Scenario routes
		r.With(auth.require(access.ModuleAdmin)).Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// Me returns the caller's role and the modules it may use.
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	role, user := principal(r)
	caps := access.For(role)
	modules := caps.Modules()
	if modules == nil {
		modules = []access.Module{}
	}
	writeJSON(w, http.StatusOK, MeDTO{User: user, Role: role, Capabilities: caps, Modules: modules})
}
