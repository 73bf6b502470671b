package timeentry

import (
	"context"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/engine"
)

type TimeEntryService interface {
	// Punch records a clock event for the caller after checking it is a
	// valid next step of the open session.
	Punch(ctx context.Context, req PunchRequest) (PunchResponse, error)
	MyEntries(ctx context.Context, limit int) ([]TimeEntryResponse, error)
	Status(ctx context.Context) (engine.ClockStatus, error)
	Today(ctx context.Context) (TodayResponse, error)
	// Delete removes an entry as an admin correction.
	Delete(ctx context.Context, id string) error
}
