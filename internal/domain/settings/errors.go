package settings

import "errors"

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrUnknownWeekday   = errors.New("unknown weekday")
)
