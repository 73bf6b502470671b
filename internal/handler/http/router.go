package http

import (
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the collaborators and options of the HTTP API.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	JWTService     jwt.Service
	Sessions       auth.SessionStore

	Auth       AuthHandler
	Employee   EmployeeHandler
	TimeEntry  TimeEntryHandler
	Report     ReportHandler
	Settings   SettingsHandler
	Attendance AttendanceHandler
	Health     *HealthHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Health != nil {
			r.Get("/health", cfg.Health.Health)
		}

		r.Post("/auth/login", cfg.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(cfg.Sessions))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", cfg.Auth.Logout)
				r.Get("/me", cfg.Auth.Me)
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionEmployeeViewAll)).Get("/", cfg.Employee.ListEmployees)
				r.Get("/{id}", cfg.Employee.GetEmployee)
				r.Get("/{id}/vacation", cfg.Employee.GetVacation)
				r.With(middleware.RequirePermission(user.PermissionVacationManage)).Put("/{id}/vacation", cfg.Employee.UpdateVacation)
			})

			r.Route("/time-entries", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimeClock))
					for _, route := range punchRoutes {
						r.Post("/"+route.path, cfg.TimeEntry.Punch(route.kind))
					}
				})
				r.Get("/my-entries", cfg.TimeEntry.MyEntries)
				r.Get("/status", cfg.TimeEntry.Status)
				r.Get("/today", cfg.TimeEntry.Today)
				r.With(middleware.RequirePermission(user.PermissionTimeCorrect)).Delete("/{id}", cfg.TimeEntry.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/hours", cfg.Report.Hours)
				r.Get("/pay-periods", cfg.Report.PayPeriods)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", cfg.Settings.Get)
				r.Put("/", cfg.Settings.Update)
				r.Post("/schedule-template", cfg.Settings.ApplyTemplate)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/summary", cfg.Attendance.MySummary)
				r.Get("/days", cfg.Attendance.MyDays)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/summaries", cfg.Attendance.ListSummaries)
					r.Post("/summaries/recalculate", cfg.Attendance.RecalculateMonth)
					r.Post("/close-out", cfg.Attendance.CloseOutDay)
				})
				r.With(middleware.RequirePermission(user.PermissionAttendanceExcuse)).
					Post("/days/{employeeID}/{date}/excuse", cfg.Attendance.Excuse)

				r.Route("/goals", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionGoalsManage))
					r.Get("/", cfg.Attendance.ListGoals)
					r.Post("/", cfg.Attendance.CreateGoal)
					r.Put("/{id}", cfg.Attendance.UpdateGoal)
					r.Delete("/{id}", cfg.Attendance.DeleteGoal)
				})
			})
		})
	})
	return r
}
