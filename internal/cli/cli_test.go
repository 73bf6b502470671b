package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/export"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	policyFile  = "testdata/policy.yaml"
	punchesFile = "testdata/punches.csv"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "timeclock", cmd.Use)

	for _, name := range []string{"hours", "classify", "period", "status", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "yaml", "period", "2025-03-05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestHours_Golden(t *testing.T) {
	out, err := run(t, "--policy", policyFile, "--format", "json", "hours", punchesFile)
	require.NoError(t, err)
	golden(t).Assert(t, "hours_json", []byte(out))
}

func TestHours_Text(t *testing.T) {
	out, err := run(t, "--policy", policyFile, "hours", punchesFile, "--from", "2025-03-04", "--to", "2025-03-04")
	require.NoError(t, err)
	assert.Contains(t, out, "EMPLOYEE")
	assert.Contains(t, out, "2025-03-04")
	assert.NotContains(t, out, "2025-03-03")
	assert.NotContains(t, out, "open")
}

func TestClassify_Golden(t *testing.T) {
	out, err := run(t, "--policy", policyFile, "--format", "json",
		"classify", punchesFile, "--from", "2025-03-03", "--to", "2025-03-09")
	require.NoError(t, err)
	golden(t).Assert(t, "classify_json", []byte(out))
}

func TestClassify_RequiresRange(t *testing.T) {
	_, err := run(t, "--policy", policyFile, "classify", punchesFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from and --to")
}

func TestClassify_RejectsBrokenSequence(t *testing.T) {
	_, err := run(t, "--policy", policyFile, "classify", "testdata/out_of_order.csv", "--from", "2025-03-03", "--to", "2025-03-03")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInconsistentSequence)
}

func TestPeriod_Golden(t *testing.T) {
	out, err := run(t, "--policy", policyFile, "--format", "json", "period", "2025-03-05", "-n", "3")
	require.NoError(t, err)
	golden(t).Assert(t, "period_json", []byte(out))
}

func TestPeriod_BeforeAnchor(t *testing.T) {
	_, err := run(t, "--policy", policyFile, "period", "2025-01-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPeriodBeforeAnchor)
}

func TestStatus(t *testing.T) {
	log, err := ReadEvents(punchesFile)
	require.NoError(t, err)
	broken, err := ReadEvents("testdata/out_of_order.csv")
	require.NoError(t, err)

	statuses := Statuses(log, time.UTC)
	require.Len(t, statuses, 2)
	assert.Equal(t, engine.StateClockedOut, statuses[0].State)
	assert.Equal(t, engine.StateClockedIn, statuses[1].State)
	assert.Equal(t, "2025-03-06T07:55:00Z", statuses[1].Since)
	assert.Contains(t, statuses[1].NextActions, engine.ClockOut)

	statuses = Statuses(broken, time.UTC)
	require.Len(t, statuses, 1)
	assert.Contains(t, statuses[0].Error, "lunch in without lunch out")

	out, err := run(t, "--policy", policyFile, "status", "testdata/out_of_order.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "error")
}

func TestExport_CSVGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.csv")
	out, err := run(t, "--policy", policyFile, "export", punchesFile,
		"--from", "2025-03-03", "--to", "2025-03-07", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 employees")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	golden(t).Assert(t, "export_hours_csv", data)
}

func TestExport_XLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hours.xlsx")
	_, err := run(t, "--policy", policyFile, "export", punchesFile,
		"--from", "2025-03-03", "--to", "2025-03-07", "-o", path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := export.ReadRows(f, export.FormatXLSX)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, "Worked Hours: 2025-03-03 to 2025-03-07", rows[0][0])
}

func TestExport_RejectsUnknownExtension(t *testing.T) {
	_, err := run(t, "export", punchesFile, "--from", "2025-03-03", "--to", "2025-03-07", "--out", "hours.pdf")
	require.Error(t, err)
}

func TestReadEvents_XLSXMatchesCSV(t *testing.T) {
	csvLog, err := ReadEvents(punchesFile)
	require.NoError(t, err)

	// write the same punches as a worksheet and read them back
	rows := [][]string{}
	for _, id := range csvLog.Employees {
		for _, ev := range csvLog.Events[id] {
			rows = append(rows, []string{id, string(ev.Kind), ev.Timestamp.Format(time.RFC3339)})
		}
	}
	path := filepath.Join(t.TempDir(), "punches.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, export.WriteXLSX(f, []export.Sheet{{
		Name:   "Punches",
		Header: []string{"employee_id", "kind", "timestamp"},
		Rows:   rows,
	}}))
	require.NoError(t, f.Close())

	xlsxLog, err := ReadEvents(path)
	require.NoError(t, err)
	assert.Equal(t, csvLog, xlsxLog)
}

func TestParseRows_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{"short row", [][]string{{"alice", "clock_in"}}, "row 1"},
		{"bad kind", [][]string{{"alice", "nap", "2025-03-03T08:00:00Z"}}, "unknown event kind"},
		{"bad timestamp", [][]string{{"alice", "clock_in", "yesterday"}}, "invalid timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRows(tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	res, err := parseRows([][]string{{""}, {"bob", "clock_in", "2025-03-03T09:00:00Z"}, {"bob", "clock_in", "2025-03-03T08:00:00Z"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, res.Employees)
	assert.Equal(t, 8, res.Events["bob"][0].Timestamp.Hour())
}
