package report

import "context"

// ReportService builds worked-hours reports across employees.
type ReportService interface {
	// HoursReport totals each employee's hours over a named date range.
	HoursReport(ctx context.Context, req HoursReportRequest) (HoursReport, error)

	// PayPeriodReport buckets each employee's hours into the most recent pay periods.
	PayPeriodReport(ctx context.Context, req PayPeriodReportRequest) (PayPeriodReport, error)
}
