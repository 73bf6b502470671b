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

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/timeclock-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/employee"
	reportService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/report"
	settingsService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/settings"
	timeEntryService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/timeentry"
	"github.com/go-chi/httplog/v3"
)

// stores is the persistence side of one deployment mode.
type stores struct {
	users     user.UserRepository
	employees employee.EmployeeRepository
	entries   timeentry.TimeEntryRepository
	daily     attendance.DailyRecordRepository
	summaries attendance.SummaryRepository
	goals     attendance.GoalRepository
	settings  settings.SettingsRepository
	sessions  auth.SessionStore
	pingers   map[string]appHTTP.Pinger
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock-backend"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := config.LoadPolicy(cfg.Engine.PolicyFile)
	if err != nil {
		return err
	}

	var st stores
	switch cfg.App.Mode {
	case config.ModeRemote:
		st, err = openRemote(ctx, cfg)
	default:
		st, err = openLocal(cfg)
	}
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.App.Mode == config.ModeLocal || cfg.App.Env == "development" {
		if err := fixtures.SeedDemo(ctx, st.users, st.employees, st.goals, policy); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		slog.Info("Demo accounts ready", "count", len(fixtures.DemoAccounts))
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to create jwt service: %w", err)
	}

	settingsSvc := settingsService.NewSettingsService(st.settings, st.goals, policy)
	authSvc := serviceAuth.NewAuthService(st.users, st.employees, st.sessions, JWTService)
	employeeSvc := employeeService.NewEmployeeService(st.employees, st.entries, settingsSvc)
	timeEntrySvc := timeEntryService.NewTimeEntryService(st.entries, st.employees, settingsSvc)
	reportSvc := reportService.NewReportService(st.employees, st.entries, settingsSvc, cfg.App.Workers)
	attendanceSvc := attendanceService.NewAttendanceService(
		st.daily,
		st.summaries,
		st.goals,
		st.employees,
		st.entries,
		settingsSvc,
		cfg.App.Workers,
	)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.FrontendURL,
		JWTService:     JWTService,
		Sessions:       st.sessions,
		Auth:           appHTTP.NewAuthHandler(authSvc),
		Employee:       appHTTP.NewEmployeeHandler(employeeSvc),
		TimeEntry:      appHTTP.NewTimeEntryHandler(timeEntrySvc),
		Report:         appHTTP.NewReportHandler(reportSvc),
		Settings:       appHTTP.NewSettingsHandler(settingsSvc),
		Attendance:     appHTTP.NewAttendanceHandler(attendanceSvc),
		Health:         appHTTP.NewHealthHandler(cfg.App.Mode, st.pingers),
	})

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler()
		jobs := cron.NewAttendanceJobs(attendanceSvc, settingsSvc, st.sessions)
		jobs.RegisterJobs(scheduler, cron.JobsConfig{
			CloseOut:       cfg.Cron.CloseOut,
			Recalculate:    cfg.Cron.Recalculate,
			SessionCleanup: cfg.Cron.SessionCleanup,
			Interval:       cfg.Cron.Interval,
		})
		scheduler.Start(ctx)
		defer scheduler.Stop()
		slog.Info("Scheduler started", "jobs", scheduler.Jobs(), "interval", cfg.Cron.Interval.String())
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "mode", cfg.App.Mode, "timezone", policy.Loc().String())
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

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openLocal keeps punches in sqlite and everything else in memory.
func openLocal(cfg *config.Config) (stores, error) {
	store, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		return stores{}, err
	}
	slog.Info("Local mode", "sqlite", cfg.SQLite.Path)

	return stores{
		users:     memory.NewUserRepository(),
		employees: memory.NewEmployeeRepository(),
		entries:   sqlite.NewTimeEntryRepository(store),
		daily:     memory.NewDailyRecordRepository(),
		summaries: memory.NewSummaryRepository(),
		goals:     memory.NewGoalRepository(),
		settings:  memory.NewSettingsRepository(),
		sessions:  memory.NewSessionStore(),
		pingers:   map[string]appHTTP.Pinger{"sqlite": store},
		close: func() {
			if err := store.Close(); err != nil {
				slog.Error("Failed to close sqlite", "error", err)
			}
		},
	}, nil
}

func openRemote(ctx context.Context, cfg *config.Config) (stores, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return stores{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return stores{}, err
	}
	slog.Info("Remote mode", "host", cfg.Database.Host, "database", cfg.Database.Name)

	var sessions auth.SessionStore = postgresql.NewSessionRepository(db)
	if cfg.Session.Store == config.SessionStoreMemory {
		sessions = memory.NewSessionStore()
	}

	return stores{
		users:     postgresql.NewUserRepository(db),
		employees: postgresql.NewEmployeeRepository(db),
		entries:   postgresql.NewTimeEntryRepository(db),
		daily:     postgresql.NewDailyRecordRepository(db),
		summaries: postgresql.NewSummaryRepository(db),
		goals:     postgresql.NewGoalRepository(db),
		settings:  postgresql.NewSettingsRepository(db),
		sessions:  sessions,
		pingers:   map[string]appHTTP.Pinger{"postgres": db},
		close:     db.Close,
	}, nil
}
