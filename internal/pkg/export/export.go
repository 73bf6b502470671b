// Package export renders tabular reports as XLSX or CSV and reads punch
// imports back from either format.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Sheet is one table. Title, when set, is written above the header.
type Sheet struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]string
	Footer []string
}

// Write renders sheets in f. JSON is not a tabular format and is rejected.
func Write(w io.Writer, f Format, sheets []Sheet) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, sheets)
	case FormatXLSX:
		return WriteXLSX(w, sheets)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes the sheets one after another, separated by an empty record.
func WriteCSV(w io.Writer, sheets []Sheet) error {
	cw := csv.NewWriter(w)
	for i, s := range sheets {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if s.Title != "" {
			if err := cw.Write([]string{s.Title}); err != nil {
				return err
			}
		}
		if err := cw.Write(s.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(s.Rows); err != nil {
			return err
		}
		if len(s.Footer) > 0 {
			if err := cw.Write(s.Footer); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes one worksheet per sheet. Numeric cells are stored as numbers.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		name := sheetName(s.Name, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}

		row := 1
		if s.Title != "" {
			if err := f.SetCellValue(name, "A1", s.Title); err != nil {
				return err
			}
			if err := f.SetCellStyle(name, "A1", "A1", bold); err != nil {
				return err
			}
			row = 3
		}
		if err := setRow(f, name, row, s.Header, bold); err != nil {
			return err
		}
		for _, r := range s.Rows {
			row++
			if err := setRow(f, name, row, r, 0); err != nil {
				return err
			}
		}
		if len(s.Footer) > 0 {
			row++
			if err := setRow(f, name, row, s.Footer, bold); err != nil {
				return err
			}
		}
		if len(s.Header) > 0 {
			last, err := excelize.ColumnNumberToName(len(s.Header))
			if err != nil {
				return err
			}
			if err := f.SetColWidth(name, "A", last, 18); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string, style int) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			cells[i] = n
		} else {
			cells[i] = v
		}
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d of %q: %w", row, sheet, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, end, style)
}

// sheetName fits a name to Excel's 31 character limit.
func sheetName(name string, i int) string {
	name = strings.NewReplacer(":", "-", "/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")").Replace(name)
	if name == "" {
		name = "Sheet" + strconv.Itoa(i+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// ReadRows reads every row of a CSV file or of the first worksheet of an XLSX file.
func ReadRows(r io.Reader, f Format) ([][]string, error) {
	switch f {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	case FormatXLSX:
		file, err := excelize.OpenReader(r)
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		name := file.GetSheetName(0)
		if name == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		return file.GetRows(name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
