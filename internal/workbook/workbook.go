// Package workbook wraps excelize access to instrument .xlsx exports.
//
// Instrument exports mix two layouts on a single sheet: a key/value metadata
// block in columns A/B at the top, and a conventional header+rows table that
// starts after a fixed number of lead-in rows. This package exposes both
// shapes and reports missing sheets and columns with the offending names so
// load failures are actionable.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound marks a missing required worksheet.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is an open instrument export.
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path. A missing or unreadable file is reported
// with the path included.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file %s: %w", path, err)
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{file: file, path: path}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Path returns the workbook's source path.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames lists the worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether the named worksheet exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, sheet := range w.SheetNames() {
		if sheet == name {
			return true
		}
	}
	return false
}

// Rows returns every row of the named sheet as strings. A missing sheet is
// reported together with the sheets the workbook does have.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, fmt.Errorf("%w: %q (workbook has: %s)",
			ErrSheetNotFound, sheet, strings.Join(w.SheetNames(), ", "))
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// KeyValueBlock reads the columns A/B metadata block of a sheet. The returned
// header is the column B cell of the first row (the instrument writes the
// block type there); the map holds trimmed column A keys to column B values
// from the remaining rows, later occurrences winning.
func (w *Workbook) KeyValueBlock(sheet string) (string, map[string]string, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return "", nil, err
	}

	var header string
	if len(rows) > 0 {
		header = strings.TrimSpace(cell(rows[0], 1))
	}

	values := make(map[string]string)
	for _, row := range rows[min(1, len(rows)):] {
		key := strings.TrimSpace(cell(row, 0))
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(cell(row, 1))
	}
	return header, values, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
