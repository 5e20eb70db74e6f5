package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: logFormat,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/summaries", attendanceHandler.ListSummaries)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/summaries/generate", attendanceHandler.GenerateSummaries)
				r.Post("/summaries/approve", attendanceHandler.ApproveSummaries)
				r.Post("/summaries/{id}/approve", attendanceHandler.ApproveSummary)
				r.Post("/logs/import", attendanceHandler.ImportSessionLogs)
				r.Post("/months/{month}/finalize", attendanceHandler.FinalizeMonth)
				r.Delete("/months/{month}/finalize", attendanceHandler.ReopenMonth)
			})
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/policies", payrollHandler.ListPolicies)

			r.Route("/salaries", func(r chi.Router) {
				r.Get("/", payrollHandler.ListSalaries)
				r.Get("/{id}", payrollHandler.GetSalary)
				r.Get("/{id}/slip", payrollHandler.SalarySlip)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.With(chiMiddleware.AllowContentType("application/json")).Post("/generate", payrollHandler.GenerateSalaries)
					r.With(chiMiddleware.AllowContentType("application/json")).Patch("/{id}", payrollHandler.EditSalary)
					r.Post("/{id}/pay", payrollHandler.MarkPaid)
				})
			})
		})
	})
	return r
}
