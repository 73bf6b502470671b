package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
)

// EventLog is a punch file grouped by employee, each stream in time order.
type EventLog struct {
	Employees []string
	Events    map[string][]engine.TimeEvent
}

// ReadEvents loads a CSV or XLSX punch file. The format follows the file
// extension; a leading employee_id header row is skipped.
func ReadEvents(path string) (EventLog, error) {
	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil || format == export.FormatJSON {
		return EventLog{}, fmt.Errorf("unsupported punch file %q: use .csv or .xlsx", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return EventLog{}, fmt.Errorf("failed to open punch file: %w", err)
	}
	defer f.Close()

	rows, err := export.ReadRows(f, format)
	if err != nil {
		return EventLog{}, fmt.Errorf("failed to read punch file: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (EventLog, error) {
	result := EventLog{Events: make(map[string][]engine.TimeEvent)}
	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "employee_id") {
			continue
		}
		if len(row) < 3 {
			return EventLog{}, fmt.Errorf("row %d: want employee_id, kind, timestamp", i+1)
		}
		employeeID := strings.TrimSpace(row[0])
		kind, err := engine.ParseEventKind(row[1])
		if err != nil {
			return EventLog{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[2]))
		if err != nil {
			return EventLog{}, fmt.Errorf("row %d: invalid timestamp %q", i+1, row[2])
		}
		if _, ok := result.Events[employeeID]; !ok {
			result.Employees = append(result.Employees, employeeID)
		}
		result.Events[employeeID] = append(result.Events[employeeID], engine.TimeEvent{
			EmployeeID: employeeID,
			Kind:       kind,
			Timestamp:  ts,
		})
	}

	slices.Sort(result.Employees)
	for _, events := range result.Events {
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].Timestamp.Before(events[b].Timestamp)
		})
	}
	return result, nil
}

// dateRange parses the inclusive --from/--to flags as calendar days in loc.
// Empty bounds are open.
func dateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = time.ParseInLocation(engine.DateLayout, from, loc); err != nil {
			return start, end, fmt.Errorf("invalid --from %q: want YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(engine.DateLayout, to, loc); err != nil {
			return start, end, fmt.Errorf("invalid --to %q: want YYYY-MM-DD", to)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return start, end, nil
}

// clip keeps the sessions that clock in on a day in [from, to].
func clip(events []engine.TimeEvent, from, to time.Time) []engine.TimeEvent {
	if from.IsZero() && to.IsZero() {
		return events
	}
	lo := from
	if lo.IsZero() {
		lo = time.Unix(0, 0)
	}
	hi := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !to.IsZero() {
		hi = to.AddDate(0, 0, 1)
	}
	return engine.ClipSessions(events, lo, hi)
}
