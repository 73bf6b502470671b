package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/employee"
	reportService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/report"
	settingsService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/settings"
	timeEntryService "github.com/cmlabs-hris/timeclock-backend-go/internal/service/timeentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

// newTestServer wires the local-mode composition behind the real router.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	policy := engine.DefaultPolicy()

	users := memory.NewUserRepository()
	employees := memory.NewEmployeeRepository()
	goals := memory.NewGoalRepository()
	require.NoError(t, fixtures.SeedDemo(ctx, users, employees, goals, policy))

	entries := memory.NewTimeEntryRepository()
	sessions := memory.NewSessionStore()
	jwtService, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	settings := settingsService.NewSettingsService(memory.NewSettingsRepository(), goals, policy)
	attendance := attendanceService.NewAttendanceService(
		memory.NewDailyRecordRepository(), memory.NewSummaryRepository(), goals, employees, entries, settings, 2,
	)

	router := NewRouter(RouterConfig{
		JWTService: jwtService,
		Sessions:   sessions,
		Auth:       NewAuthHandler(authService.NewAuthService(users, employees, sessions, jwtService)),
		Employee:   NewEmployeeHandler(employeeService.NewEmployeeService(employees, entries, settings)),
		TimeEntry:  NewTimeEntryHandler(timeEntryService.NewTimeEntryService(entries, employees, settings)),
		Report:     NewReportHandler(reportService.NewReportService(employees, entries, settings, 2)),
		Settings:   NewSettingsHandler(settings),
		Attendance: NewAttendanceHandler(attendance),
		Health:     NewHealthHandler("local", nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path, token string, body any) (*http.Response, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	resp, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(s.t, token.AccessToken)
	return token.AccessToken
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	t.Run("wrong password", func(t *testing.T) {
		resp, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "john@demo.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, env := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, env.Error.Details, "email")
		assert.Contains(t, env.Error.Details, "password")
	})

	t.Run("missing token", func(t *testing.T) {
		resp, _ := s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me then logout revokes the session", func(t *testing.T) {
		token := s.login("john@demo.com", "demo123")

		resp, env := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var me struct {
			Email    string `json:"email"`
			Role     string `json:"role"`
			FullName string `json:"full_name"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, "john@demo.com", me.Email)
		assert.Equal(t, "employee", me.Role)
		assert.Equal(t, "John Doe", me.FullName)

		resp, _ = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTimeEntries_PunchFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("john@demo.com", "demo123")

	resp, env := s.do(http.MethodPost, "/api/v1/time-entries/clock-out", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No active clock in found", env.Error.Message)

	resp, env = s.do(http.MethodPost, "/api/v1/time-entries/clock-in", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Clocked in", env.Message)

	resp, env = s.do(http.MethodPost, "/api/v1/time-entries/clock-in", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Already clocked in", env.Error.Message)

	resp, env = s.do(http.MethodPost, "/api/v1/time-entries/lunch-in", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error.Message, "lunch in without lunch out")

	resp, env = s.do(http.MethodGet, "/api/v1/time-entries/status", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status engine.ClockStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, engine.StateClockedIn, status.State)

	resp, env = s.do(http.MethodPost, "/api/v1/time-entries/clock-out", token, map[string]string{"notes": "done"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = s.do(http.MethodGet, "/api/v1/time-entries/my-entries?limit=10", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 2)
	assert.Equal(t, "clock_out", mine[0]["kind"])

	t.Run("deleting requires the correction permission", func(t *testing.T) {
		id := mine[0]["id"].(string)
		resp, _ := s.do(http.MethodDelete, "/api/v1/time-entries/"+id, token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		admin := s.login("admin@demo.com", "admin123")
		resp, _ = s.do(http.MethodDelete, "/api/v1/time-entries/"+id, admin, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = s.do(http.MethodDelete, "/api/v1/time-entries/"+id, admin, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	john := s.login("john@demo.com", "demo123")
	admin := s.login("admin@demo.com", "admin123")

	for _, path := range []string{"/api/v1/employees", "/api/v1/reports/hours", "/api/v1/settings", "/api/v1/attendance/goals"} {
		resp, _ := s.do(http.MethodGet, path, john, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	resp, env := s.do(http.MethodGet, "/api/v1/employees?limit=1", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	goal := map[string]any{"name": "Perfect Attendance", "kind": "positive", "max_days_missed": 0, "max_days_late": 0}
	resp, _ = s.do(http.MethodPost, "/api/v1/attendance/goals", admin, goal)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, env = s.do(http.MethodPost, "/api/v1/attendance/goals", admin, goal)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = s.do(http.MethodGet, "/api/v1/attendance/goals", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var goals []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, "Perfect Attendance", goals[0]["name"])

	resp, env = s.do(http.MethodPut, "/api/v1/settings", admin, map[string]any{"pay_period_type": "monthly"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error.Details, "pay_period_type")

	resp, env = s.do(http.MethodPost, "/api/v1/settings/schedule-template", admin, map[string]string{"template": "every_day_8hours"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var settings struct {
		WeeklyScheduledHours float64 `json:"weekly_scheduled_hours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.Positive(t, settings.WeeklyScheduledHours)
}

func TestReports_Export(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@demo.com", "admin123")

	resp, env := s.do(http.MethodGet, "/api/v1/reports/hours?range=bogus", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error.Details, "range")

	resp, _ = s.do(http.MethodGet, "/api/v1/reports/hours?format=pdf", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/v1/reports/pay-periods?count=2&format=csv", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "pay-periods.csv")

	resp, _ = s.do(http.MethodGet, "/api/v1/reports/hours?format=xlsx", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, env := s.do(http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}
