package report

import "errors"

var ErrUnsupportedFormat = errors.New("unsupported export format, use json, csv or xlsx")
