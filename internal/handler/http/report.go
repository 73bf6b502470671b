package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
)

type ReportHandler interface {
	Hours(w http.ResponseWriter, r *http.Request)
	PayPeriods(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

type sheeter interface {
	Sheets() []export.Sheet
}

// respond writes data as JSON, or as an attachment when ?format asks for one.
func respond(w http.ResponseWriter, r *http.Request, name string, data sheeter) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, report.ErrUnsupportedFormat)
		return
	}
	if format == export.FormatJSON {
		response.Success(w, data)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, data.Sheets()); err != nil {
		response.HandleError(w, fmt.Errorf("failed to render %s: %w", format, err))
		return
	}
	response.WriteFile(w, format.ContentType(), name+"."+string(format), buf.Bytes())
}

func optional(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// Hours implements ReportHandler
func (h *reportHandlerImpl) Hours(w http.ResponseWriter, r *http.Request) {
	req := report.HoursReportRequest{
		Range:         r.URL.Query().Get("range"),
		SelectedMonth: optional(r, "month"),
		EmployeeID:    optional(r, "employee_id"),
	}

	result, err := h.reportService.HoursReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	respond(w, r, "hours-"+result.PeriodStart+"-"+result.PeriodEnd, result)
}

// PayPeriods implements ReportHandler
func (h *reportHandlerImpl) PayPeriods(w http.ResponseWriter, r *http.Request) {
	req := report.PayPeriodReportRequest{EmployeeID: optional(r, "employee_id")}
	if c := r.URL.Query().Get("count"); c != "" {
		count, err := strconv.Atoi(c)
		if err != nil {
			response.BadRequest(w, "count must be an integer", nil)
			return
		}
		req.Count = count
	}

	result, err := h.reportService.PayPeriodReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	respond(w, r, "pay-periods", result)
}
