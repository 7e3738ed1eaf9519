package curves

// MeltCSVRow mirrors the melt curve CSV artifact column for column.
type MeltCSVRow struct {
	Well         string  `csv:"Well"`
	WellPosition string  `csv:"Well Position"`
	Reading      int     `csv:"Reading"`
	Temperature  float64 `csv:"Temperature"`
	Fluorescence float64 `csv:"Fluorescence"`
	Derivative   float64 `csv:"Derivative"`
	TargetName   string  `csv:"Target Name"`
}

// AmplificationCSVRow mirrors the amplification CSV artifact.
type AmplificationCSVRow struct {
	Well         string  `csv:"Well"`
	WellPosition string  `csv:"Well Position"`
	Cycle        int     `csv:"Cycle"`
	TargetName   string  `csv:"Target Name"`
	Rn           float64 `csv:"Rn"`
	DeltaRn      float64 `csv:"Delta Rn"`
}

// CSVName returns the artifact file name for this curve kind.
func (k Kind) CSVName() string {
	if k == KindAmplification {
		return "amplification_data.csv"
	}
	return "melt_curve_data.csv"
}

// ToMeltRows converts cleaned readings to the CSV row shape.
func ToMeltRows(readings []Reading) []MeltCSVRow {
	rows := make([]MeltCSVRow, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, MeltCSVRow{
			Well:         r.Well,
			WellPosition: r.WellPosition,
			Reading:      r.ReadingIndex,
			Temperature:  r.X,
			Fluorescence: r.Value,
			Derivative:   r.Aux,
			TargetName:   r.Target,
		})
	}
	return rows
}

// ToAmplificationRows converts cleaned readings to the CSV row shape.
func ToAmplificationRows(readings []Reading) []AmplificationCSVRow {
	rows := make([]AmplificationCSVRow, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, AmplificationCSVRow{
			Well:         r.Well,
			WellPosition: r.WellPosition,
			Cycle:        int(r.X),
			TargetName:   r.Target,
			Rn:           r.Aux,
			DeltaRn:      r.Value,
		})
	}
	return rows
}

// FromMeltRows converts CSV rows back into readings.
func FromMeltRows(rows []MeltCSVRow) []Reading {
	readings := make([]Reading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, Reading{
			Well:         row.Well,
			WellPosition: row.WellPosition,
			Target:       row.TargetName,
			ReadingIndex: row.Reading,
			X:            row.Temperature,
			Value:        row.Fluorescence,
			Aux:          row.Derivative,
		})
	}
	return readings
}

// FromAmplificationRows converts CSV rows back into readings.
func FromAmplificationRows(rows []AmplificationCSVRow) []Reading {
	readings := make([]Reading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, Reading{
			Well:         row.Well,
			WellPosition: row.WellPosition,
			Target:       row.TargetName,
			X:            float64(row.Cycle),
			Value:        row.DeltaRn,
			Aux:          row.Rn,
		})
	}
	return readings
}
