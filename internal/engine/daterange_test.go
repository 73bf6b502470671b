package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRangeFor(t *testing.T) {
	now := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	march := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		opt      DateRangeOption
		selected *time.Time
		start    string
		end      string
		label    string
	}{
		{RangeCurrentMonth, nil, "2025-01-01", "2025-01-31", "January 2025 (Month to Date)"},
		{RangeLastMonth, nil, "2024-12-01", "2024-12-31", "December 2024"},
		{RangeSelectMonth, &march, "2024-03-01", "2024-03-31", "March 2024"},
		{RangeSelectMonth, nil, "2025-01-01", "2025-01-31", "January 2025 (Month to Date)"},
		{RangeCurrentYear, nil, "2025-01-01", "2025-12-31", "2025 (Year to Date)"},
		{RangeLastYear, nil, "2024-01-01", "2024-12-31", "2024"},
		{"bogus", nil, "2025-01-01", "2025-01-31", "January 2025 (Month to Date)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.opt), func(t *testing.T) {
			r := DateRangeFor(tt.opt, now, tt.selected)
			assert.Equal(t, tt.start, r.Start.Format(DateLayout))
			assert.Equal(t, tt.end, r.End.Format(DateLayout))
			assert.Equal(t, tt.label, r.Label)
		})
	}
}

func TestMonthRange_LeapYear(t *testing.T) {
	r := MonthRange(2024, time.February, nil)

	assert.Equal(t, "2024-02-29", r.End.Format(DateLayout))
	assert.Equal(t, "2024-03-01", r.Until().Format(DateLayout))
}
