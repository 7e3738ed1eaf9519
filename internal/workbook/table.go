package workbook

import (
	"fmt"
	"strings"
)

// Table is a header-mapped view of a sheet region.
type Table struct {
	Sheet   string
	Columns []string
	Rows    []TableRow
}

// TableRow is one data row keyed by column header.
type TableRow struct {
	// Number is the 1-based workbook row this data came from.
	Number int
	Cells  map[string]string
}

// Get returns the named cell, or "" when the column is absent.
func (r TableRow) Get(column string) string {
	return r.Cells[column]
}

// Table reads the named sheet as a table whose header row sits after skip
// lead-in rows. Fully empty data rows are dropped.
func (w *Workbook) Table(sheet string, skip int) (*Table, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= skip {
		return nil, fmt.Errorf("sheet %q: no header row after skipping %d rows", sheet, skip)
	}

	header := rows[skip]
	columns := make([]string, 0, len(header))
	for _, name := range header {
		columns = append(columns, strings.TrimSpace(name))
	}

	table := &Table{Sheet: sheet, Columns: columns}
	for i, row := range rows[skip+1:] {
		empty := true
		cells := make(map[string]string, len(columns))
		for col, name := range columns {
			if name == "" {
				continue
			}
			value := strings.TrimSpace(cell(row, col))
			cells[name] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, TableRow{Number: skip + i + 2, Cells: cells})
	}
	return table, nil
}

// MissingColumns returns the required column names absent from the table, in
// the order requested.
func (t *Table) MissingColumns(required ...string) []string {
	present := make(map[string]struct{}, len(t.Columns))
	for _, name := range t.Columns {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// RequireColumns errors when any of the required columns is absent, naming
// every missing column.
func (t *Table) RequireColumns(required ...string) error {
	if missing := t.MissingColumns(required...); len(missing) > 0 {
		return fmt.Errorf("sheet %q: missing expected columns: %s", t.Sheet, strings.Join(missing, ", "))
	}
	return nil
}
