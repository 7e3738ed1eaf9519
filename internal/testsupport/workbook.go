package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SetupTableOffset is the number of lead-in rows before the per-well table on
// the Sample Setup and Results sheets, matching the instrument export layout.
const SetupTableOffset = 35

// WorkbookSpec describes a synthetic instrument export.
type WorkbookSpec struct {
	// RunEndTime populates "Experiment Run End Time"; empty omits the key.
	RunEndTime string
	// SetupRows are [well, well position, sample name, target name] rows for
	// the extended Sample Setup table.
	SetupRows [][]string
	// MeltHeader overrides the Melt Curve Raw Data header when non-nil.
	MeltHeader []string
	// MeltRows match the melt header: well, position, reading, temperature,
	// fluorescence, derivative, target.
	MeltRows [][]string
	// AmpRows match the amplification header: well, position, cycle, target,
	// Rn, delta Rn.
	AmpRows [][]string
	// ResultRows populate the Results table.
	ResultRows [][]string
	// OmitSheets drops named sheets entirely.
	OmitSheets []string
}

// DefaultSpec returns a small, fully valid two-well export.
func DefaultSpec() WorkbookSpec {
	return WorkbookSpec{
		RunEndTime: "2023-05-02 14:31:22 EDT",
		SetupRows: [][]string{
			{"1", "A1", "control", "RNaseP"},
			{"2", "A2", "patient", "RNaseP"},
		},
		MeltRows: [][]string{
			{"1", "A1", "1", "60.0", "1.20", "0.01", "RNaseP"},
			{"1", "A1", "2", "60.5", "1.40", "0.02", "RNaseP"},
			{"2", "A2", "1", "60.0", "1.10", "0.01", "RNaseP"},
			{"2", "A2", "2", "60.5", "1.35", "0.02", "RNaseP"},
		},
		AmpRows: [][]string{
			{"1", "A1", "1", "RNaseP", "1.01", "0.10"},
			{"1", "A1", "2", "RNaseP", "1.22", "0.31"},
			{"2", "A2", "1", "RNaseP", "0.98", "0.08"},
			{"2", "A2", "2", "RNaseP", "1.18", "0.27"},
		},
		ResultRows: [][]string{
			{"1", "A1", "control", "RNaseP", "24.1"},
			{"2", "A2", "patient", "RNaseP", "25.3"},
		},
	}
}

// WriteWorkbook renders spec as an .xlsx file under dir and returns its path.
func WriteWorkbook(t *testing.T, dir string, spec WorkbookSpec) string {
	t.Helper()

	path := filepath.Join(dir, "input.xlsx")
	f := excelize.NewFile()
	defer f.Close()

	omitted := make(map[string]bool, len(spec.OmitSheets))
	for _, sheet := range spec.OmitSheets {
		omitted[sheet] = true
	}

	if !omitted["Sample Setup"] {
		writeSampleSetup(t, f, spec)
	}
	if !omitted["Melt Curve Raw Data"] {
		header := spec.MeltHeader
		if header == nil {
			header = []string{"Well", "Well Position", "Reading", "Temperature", "Fluorescence", "Derivative", "Target Name"}
		}
		writeTable(t, f, "Melt Curve Raw Data", 0, header, spec.MeltRows)
	}
	if !omitted["Amplification Data"] {
		header := []string{"Well", "Well Position", "Cycle", "Target Name", "Rn", "Delta Rn"}
		writeTable(t, f, "Amplification Data", 0, header, spec.AmpRows)
	}
	if !omitted["Results"] {
		header := []string{"Well", "Well Position", "Sample Name", "Target Name", "CT"}
		writeTable(t, f, "Results", SetupTableOffset, header, spec.ResultRows)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeSampleSetup(t *testing.T, f *excelize.File, spec WorkbookSpec) {
	t.Helper()
	if _, err := f.NewSheet("Sample Setup"); err != nil {
		t.Fatalf("create Sample Setup: %v", err)
	}

	rows := [][]string{
		{"Block Type", "96-Well 0.2-mL Block"},
		{"Chemistry", "SYBR_GREEN"},
		{"Passive Reference", "ROX"},
		{"Date Created", "2023-05-01 09:12:44 AM EDT"},
		{"Experiment Type", "Melt Curve"},
		{"Quantification Cycle Method", "Ct"},
		{"Signal Smoothing On", "true"},
	}
	if spec.RunEndTime != "" {
		rows = append(rows, []string{"Experiment Run End Time", spec.RunEndTime})
	}
	for i, row := range rows {
		setRow(t, f, "Sample Setup", i+1, row)
	}

	header := []string{"Well", "Well Position", "Sample Name", "Target Name"}
	setRow(t, f, "Sample Setup", SetupTableOffset+1, header)
	for i, row := range spec.SetupRows {
		setRow(t, f, "Sample Setup", SetupTableOffset+2+i, row)
	}
}

func writeTable(t *testing.T, f *excelize.File, sheet string, offset int, header []string, rows [][]string) {
	t.Helper()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("create %s: %v", sheet, err)
	}
	setRow(t, f, sheet, offset+1, header)
	for i, row := range rows {
		setRow(t, f, sheet, offset+2+i, row)
	}
}

func setRow(t *testing.T, f *excelize.File, sheet string, row int, cells []string) {
	t.Helper()
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		t.Fatalf("cell name for row %d: %v", row, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		t.Fatalf("set row %s!%s: %v", sheet, fmt.Sprint(row), err)
	}
}
