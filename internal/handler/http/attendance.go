package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	MySummary(w http.ResponseWriter, r *http.Request)
	MyDays(w http.ResponseWriter, r *http.Request)
	ListSummaries(w http.ResponseWriter, r *http.Request)
	RecalculateMonth(w http.ResponseWriter, r *http.Request)
	CloseOutDay(w http.ResponseWriter, r *http.Request)
	Excuse(w http.ResponseWriter, r *http.Request)

	ListGoals(w http.ResponseWriter, r *http.Request)
	CreateGoal(w http.ResponseWriter, r *http.Request)
	UpdateGoal(w http.ResponseWriter, r *http.Request)
	DeleteGoal(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService, now: time.Now}
}

// yearMonth reads ?year=&month=, defaulting to the current month.
func (h *attendanceHandlerImpl) yearMonth(r *http.Request) (int, time.Month, bool) {
	now := h.now()
	year, month := now.Year(), now.Month()
	if y := r.URL.Query().Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			return 0, 0, false
		}
		year = v
	}
	if m := r.URL.Query().Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil {
			return 0, 0, false
		}
		month = time.Month(v)
	}
	return year, month, true
}

// MySummary implements AttendanceHandler
func (h *attendanceHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(r)
	if !ok {
		response.BadRequest(w, "year and month must be integers", nil)
		return
	}
	result, err := h.attendanceService.MySummary(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// MyDays implements AttendanceHandler
func (h *attendanceHandlerImpl) MyDays(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(r)
	if !ok {
		response.BadRequest(w, "year and month must be integers", nil)
		return
	}
	result, err := h.attendanceService.MyDays(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListSummaries implements AttendanceHandler
func (h *attendanceHandlerImpl) ListSummaries(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(r)
	if !ok {
		response.BadRequest(w, "year and month must be integers", nil)
		return
	}
	result, err := h.attendanceService.ListSummaries(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// RecalculateMonth implements AttendanceHandler
func (h *attendanceHandlerImpl) RecalculateMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(r)
	if !ok {
		response.BadRequest(w, "year and month must be integers", nil)
		return
	}
	count, err := h.attendanceService.RecalculateMonth(r.Context(), year, month)
	if err != nil {
		slog.Error("RecalculateMonth service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance summaries recalculated", map[string]int{"count": count})
}

// CloseOutDay implements AttendanceHandler. ?date defaults to yesterday.
func (h *attendanceHandlerImpl) CloseOutDay(w http.ResponseWriter, r *http.Request) {
	date := h.now().AddDate(0, 0, -1)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(engine.DateLayout, d)
		if err != nil {
			response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
			return
		}
		date = parsed
	}

	result, err := h.attendanceService.CloseOutDay(r.Context(), date)
	if err != nil {
		slog.Error("CloseOutDay service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance day closed", result)
}

// Excuse implements AttendanceHandler
func (h *attendanceHandlerImpl) Excuse(w http.ResponseWriter, r *http.Request) {
	var req attendance.ExcuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Date = chi.URLParam(r, "date")

	result, err := h.attendanceService.Excuse(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attendance day excused", result)
}

// ListGoals implements AttendanceHandler
func (h *attendanceHandlerImpl) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.attendanceService.ListGoals(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, goals)
}

// CreateGoal implements AttendanceHandler
func (h *attendanceHandlerImpl) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req attendance.GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	goal, err := h.attendanceService.CreateGoal(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attendance goal created", goal)
}

// UpdateGoal implements AttendanceHandler
func (h *attendanceHandlerImpl) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req attendance.GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	goal, err := h.attendanceService.UpdateGoal(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance goal updated", goal)
}

// DeleteGoal implements AttendanceHandler
func (h *attendanceHandlerImpl) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance goal deleted", nil)
}
