package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimeEntryHandler interface {
	// Punch returns the handler recording one kind of clock event.
	Punch(kind engine.EventKind) http.HandlerFunc
	MyEntries(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{timeEntryService: timeEntryService}
}

var punchRoutes = []struct {
	path string
	kind engine.EventKind
}{
	{"clock-in", engine.ClockIn},
	{"clock-out", engine.ClockOut},
	{"lunch-out", engine.LunchOut},
	{"lunch-in", engine.LunchIn},
	{"unpaid-out", engine.UnpaidOut},
	{"unpaid-in", engine.UnpaidIn},
}

var punchMessages = map[engine.EventKind]string{
	engine.ClockIn:   "Clocked in",
	engine.ClockOut:  "Clocked out",
	engine.LunchOut:  "Lunch started",
	engine.LunchIn:   "Lunch ended",
	engine.UnpaidOut: "Unpaid break started",
	engine.UnpaidIn:  "Unpaid break ended",
}

// Punch implements TimeEntryHandler. The body is optional.
func (h *timeEntryHandlerImpl) Punch(kind engine.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req timeentry.PunchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		req.Kind = kind

		result, err := h.timeEntryService.Punch(r.Context(), req)
		if err != nil {
			if !engine.IsClientError(err) {
				slog.Error("Punch service error", "kind", kind, "error", err)
			}
			response.HandleError(w, err)
			return
		}
		response.Created(w, punchMessages[kind], result)
	}
}

// MyEntries implements TimeEntryHandler
func (h *timeEntryHandlerImpl) MyEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	entries, err := h.timeEntryService.MyEntries(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// Status implements TimeEntryHandler
func (h *timeEntryHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.timeEntryService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// Today implements TimeEntryHandler
func (h *timeEntryHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	today, err := h.timeEntryService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, today)
}

// Delete implements TimeEntryHandler
func (h *timeEntryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.timeEntryService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Time entry deleted", nil)
}
