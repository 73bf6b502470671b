package attendance

import "errors"

var (
	ErrDailyRecordNotFound = errors.New("attendance day not found")
	ErrDayAlreadyClosed    = errors.New("attendance day is already closed")
	ErrDayNotScheduled     = errors.New("day is not a scheduled working day")
	ErrSummaryNotFound     = errors.New("attendance summary not found")
	ErrGoalNotFound        = errors.New("attendance goal not found")
	ErrGoalNameExists      = errors.New("attendance goal name already exists")
)
