package curves

import (
	"dpcretl/internal/workbook"
)

// LoadMelt reads the Melt Curve Raw Data sheet. The sheet and its expected
// columns must be present; row contents stay raw for the cleaner.
func LoadMelt(wb *workbook.Workbook) (Dataset, error) {
	table, err := wb.Table(KindMelt.Sheet(), 0)
	if err != nil {
		return Dataset{}, err
	}
	if err := table.RequireColumns("Well", "Well Position", "Reading", "Temperature", "Fluorescence", "Derivative", "Target Name"); err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Kind: KindMelt, Raw: make([]RawReading, 0, len(table.Rows))}
	for _, row := range table.Rows {
		ds.Raw = append(ds.Raw, RawReading{
			Row:          row.Number,
			Well:         row.Get("Well"),
			WellPosition: row.Get("Well Position"),
			Target:       row.Get("Target Name"),
			ReadingIndex: row.Get("Reading"),
			X:            row.Get("Temperature"),
			Value:        row.Get("Fluorescence"),
			Aux:          row.Get("Derivative"),
		})
	}
	return ds, nil
}

// LoadAmplification reads the Amplification Data sheet. Rows with missing
// wells or measurements are kept here and flagged by the cleaner.
func LoadAmplification(wb *workbook.Workbook) (Dataset, error) {
	table, err := wb.Table(KindAmplification.Sheet(), 0)
	if err != nil {
		return Dataset{}, err
	}
	if err := table.RequireColumns("Well", "Well Position", "Cycle", "Target Name", "Rn", "Delta Rn"); err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Kind: KindAmplification, Raw: make([]RawReading, 0, len(table.Rows))}
	for _, row := range table.Rows {
		ds.Raw = append(ds.Raw, RawReading{
			Row:          row.Number,
			Well:         row.Get("Well"),
			WellPosition: row.Get("Well Position"),
			Target:       row.Get("Target Name"),
			X:            row.Get("Cycle"),
			Value:        row.Get("Delta Rn"),
			Aux:          row.Get("Rn"),
		})
	}
	return ds, nil
}
