package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/response"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Employee   EmployeeHandler
	Rule       RuleHandler
	Attendance AttendanceHandler
	Advance    AdvanceHandler
	Payroll    PayrollHandler
	Ledger     LedgerHandler
}

func NewRouter(JWTService jwt.Service, logger *slog.Logger, allowedOrigins []string, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	adminOnly := middleware.RequireRole(middleware.RoleAdmin)
	adminOrManager := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.Employee.List)
			r.Post("/", h.Employee.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Employee.Get)
				r.Put("/", h.Employee.Update)
				r.Post("/activate", h.Employee.Activate)
				r.Post("/deactivate", h.Employee.Deactivate)
				r.Get("/ledger", h.Ledger.GetEmployeeLedger)
			})
		})

		r.Route("/departments/rules", func(r chi.Router) {
			r.Get("/", h.Rule.List)
			r.Get("/{department}", h.Rule.Get)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/{department}", h.Rule.Update)
				r.Delete("/{department}", h.Rule.Reset)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.Attendance.List)
			r.Post("/", h.Attendance.Mark)
			r.Post("/bulk", h.Attendance.BulkMark)
			r.Get("/hours", h.Attendance.PreviewHours)
			r.Route("/biometric", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.With(adminOrManager).Post("/credentials", h.Attendance.RegisterCredential)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Attendance.Get)
				r.Put("/", h.Attendance.Update)
				r.Delete("/", h.Attendance.Delete)
			})
		})

		r.Route("/advances", func(r chi.Router) {
			r.Get("/", h.Advance.List)
			r.Post("/", h.Advance.Create)
			r.Delete("/{id}", h.Advance.Delete)
		})

		r.Route("/payrolls", func(r chi.Router) {
			r.Get("/", h.Payroll.ListPayrollRecords)
			r.Post("/generate", h.Payroll.GeneratePayroll)
			r.Get("/summary", h.Payroll.GetPayrollSummary)

			// Status changes
			r.Group(func(r chi.Router) {
				r.Use(adminOrManager)
				r.Post("/mark-paid", h.Payroll.MarkPaid)
				r.Post("/mark-all-paid", h.Payroll.MarkAllPaid)
			})
			r.With(adminOnly).Post("/lock", h.Payroll.Lock)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Payroll.GetPayrollRecord)
				r.With(adminOrManager).Delete("/", h.Payroll.DeletePayrollRecord)
				r.Post("/recompute", h.Payroll.RecomputePayrollRecord)
				r.Get("/ledger", h.Ledger.GetLedger)
				r.Get("/payments", h.Ledger.ListPayments)
				r.Post("/payments", h.Ledger.RecordPayment)
				r.Post("/recovery", h.Ledger.ScheduleRecovery)
				r.Delete("/recovery", h.Ledger.CancelRecovery)
			})
		})

		r.Route("/payments/{id}", func(r chi.Router) {
			r.Put("/", h.Ledger.UpdatePayment)
			r.Delete("/", h.Ledger.DeletePayment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
