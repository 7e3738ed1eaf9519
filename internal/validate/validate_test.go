package validate_test

import (
	"strconv"
	"testing"

	"dpcretl/internal/curves"
	"dpcretl/internal/validate"
)

func defaultOptions() validate.Options {
	return validate.Options{DecimalComma: true, FlagNegative: true}
}

func meltRaw(rows ...curves.RawReading) curves.Dataset {
	return curves.Dataset{Kind: curves.KindMelt, Raw: rows}
}

func TestCleanConvertsDecimalComma(t *testing.T) {
	ds := meltRaw(curves.RawReading{Row: 2, Well: "1", WellPosition: "A1", X: "60,5", Value: "3,14", Aux: "0,01"})

	result := validate.Clean(ds, defaultOptions())
	if len(result.Anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %+v", result.Anomalies)
	}
	if len(result.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(result.Readings))
	}
	r := result.Readings[0]
	if r.X != 60.5 || r.Value != 3.14 || r.Aux != 0.01 {
		t.Fatalf("unexpected parsed values: %+v", r)
	}
}

func TestCleanDropsNonNumericAndRecords(t *testing.T) {
	ds := meltRaw(
		curves.RawReading{Row: 2, Well: "1", X: "60.0", Value: "n/a"},
		curves.RawReading{Row: 3, Well: "1", X: "60.5", Value: "1.2"},
	)

	result := validate.Clean(ds, defaultOptions())
	if len(result.Readings) != 1 {
		t.Fatalf("expected 1 surviving reading, got %d", len(result.Readings))
	}
	if len(result.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %+v", result.Anomalies)
	}
	a := result.Anomalies[0]
	if a.Kind != validate.KindNonNumeric || a.Row != 2 || a.Value != "n/a" {
		t.Fatalf("unexpected anomaly: %+v", a)
	}
}

func TestCleanFlagsDuplicatesKeepsFirst(t *testing.T) {
	ds := meltRaw(
		curves.RawReading{Row: 2, Well: "1", X: "60.0", Value: "1.0"},
		curves.RawReading{Row: 3, Well: "1", X: "60.0", Value: "9.9"},
		curves.RawReading{Row: 4, Well: "2", X: "60.0", Value: "2.0"},
	)

	result := validate.Clean(ds, defaultOptions())
	if len(result.Readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(result.Readings))
	}
	if result.Readings[0].Value != 1.0 {
		t.Fatalf("first occurrence should be kept, got %+v", result.Readings[0])
	}
	if len(result.Anomalies) != 1 || result.Anomalies[0].Kind != validate.KindDuplicate {
		t.Fatalf("expected one duplicate anomaly, got %+v", result.Anomalies)
	}
}

func TestCleanFlagsNegativeFluorescence(t *testing.T) {
	ds := meltRaw(
		curves.RawReading{Row: 2, Well: "1", X: "60.0", Value: "-0.5"},
		curves.RawReading{Row: 3, Well: "1", X: "60.5", Value: "0.5"},
	)

	result := validate.Clean(ds, defaultOptions())
	if len(result.Readings) != 1 || result.Readings[0].Value != 0.5 {
		t.Fatalf("negative reading should be excluded: %+v", result.Readings)
	}
	if len(result.Anomalies) != 1 || result.Anomalies[0].Kind != validate.KindNegative {
		t.Fatalf("expected negative anomaly, got %+v", result.Anomalies)
	}

	relaxed := validate.Clean(ds, validate.Options{DecimalComma: true})
	if len(relaxed.Readings) != 2 {
		t.Fatalf("negative readings should pass when flagging is off: %+v", relaxed.Readings)
	}
}

func TestCleanRecordsMissingWell(t *testing.T) {
	ds := curves.Dataset{Kind: curves.KindAmplification, Raw: []curves.RawReading{
		{Row: 2, Well: "", X: "1", Value: "0.1", Aux: "1.0"},
		{Row: 3, Well: "1", X: "1", Value: "0.1", Aux: ""},
	}}

	result := validate.Clean(ds, defaultOptions())
	if len(result.Readings) != 0 {
		t.Fatalf("expected no surviving readings, got %+v", result.Readings)
	}
	if len(result.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %+v", result.Anomalies)
	}
	if result.Anomalies[0].Kind != validate.KindMissingWell {
		t.Fatalf("expected missing well anomaly first, got %+v", result.Anomalies[0])
	}
	if result.Anomalies[1].Kind != validate.KindNonNumeric {
		t.Fatalf("expected missing Rn flagged non-numeric, got %+v", result.Anomalies[1])
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	ds := meltRaw(
		curves.RawReading{Row: 2, Well: "1", WellPosition: "A1", ReadingIndex: "1", X: "60,0", Value: "1,25", Aux: "0,02", Target: "RNaseP"},
		curves.RawReading{Row: 3, Well: "1", WellPosition: "A1", ReadingIndex: "2", X: "60,5", Value: "bad", Aux: "0,02"},
		curves.RawReading{Row: 4, Well: "1", WellPosition: "A1", ReadingIndex: "3", X: "60,0", Value: "2,00"},
	)

	first := validate.Clean(ds, defaultOptions())
	if len(first.Anomalies) == 0 {
		t.Fatal("expected anomalies on first pass")
	}

	recycled := curves.Dataset{Kind: curves.KindMelt}
	for _, r := range first.Readings {
		recycled.Raw = append(recycled.Raw, curves.RawReading{
			Well:         r.Well,
			WellPosition: r.WellPosition,
			Target:       r.Target,
			ReadingIndex: strconv.Itoa(r.ReadingIndex),
			X:            strconv.FormatFloat(r.X, 'g', -1, 64),
			Value:        strconv.FormatFloat(r.Value, 'g', -1, 64),
			Aux:          strconv.FormatFloat(r.Aux, 'g', -1, 64),
		})
	}

	second := validate.Clean(recycled, defaultOptions())
	if len(second.Anomalies) != 0 {
		t.Fatalf("re-cleaning clean data produced anomalies: %+v", second.Anomalies)
	}
	if len(second.Readings) != len(first.Readings) {
		t.Fatalf("reading count changed on second pass: %d vs %d", len(second.Readings), len(first.Readings))
	}
}

func TestSanitizeNumber(t *testing.T) {
	cases := []struct {
		in           string
		decimalComma bool
		want         string
	}{
		{"3,14", true, "3.14"},
		{"3.14", true, "3.14"},
		{" 42 ", true, "42"},
		{"3,14", false, "3,14"},
		{" 1,5 ", true, "1.5"},
		{"1,234.5", true, "1,234.5"},
	}
	for _, tc := range cases {
		if got := validate.SanitizeNumber(tc.in, tc.decimalComma); got != tc.want {
			t.Errorf("SanitizeNumber(%q, %v) = %q, want %q", tc.in, tc.decimalComma, got, tc.want)
		}
	}
}
