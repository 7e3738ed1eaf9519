package replicate_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"dpcretl/internal/curves"
	"dpcretl/internal/replicate"
)

func TestAverageComputesMeanAndStdDev(t *testing.T) {
	readings := []curves.Reading{
		{Well: "1", WellPosition: "A1", X: 60.0, Value: 1.0},
		{Well: "13", WellPosition: "B1", X: 60.0, Value: 3.0},
		{Well: "1", WellPosition: "A1", X: 60.5, Value: 2.0},
		{Well: "13", WellPosition: "B1", X: 60.5, Value: 4.0},
		{Well: "2", WellPosition: "A2", X: 60.0, Value: 9.0},
	}
	groups := map[string][]string{
		"control_1": {"A1", "B1"},
		"patient_2": {"A2"},
		"empty_3":   {"C3"},
	}

	avg := replicate.Average(readings, groups)

	if len(avg) != 3 {
		t.Fatalf("expected 3 aggregated points, got %+v", avg)
	}
	first := avg[0]
	if first.Group != "control_1" || first.X != 60.0 {
		t.Fatalf("unexpected ordering: %+v", first)
	}
	if first.Mean != 2.0 || first.N != 2 {
		t.Fatalf("unexpected mean: %+v", first)
	}
	if math.Abs(first.StdDev-math.Sqrt2) > 1e-9 {
		t.Fatalf("unexpected stddev: %v", first.StdDev)
	}

	last := avg[2]
	if last.Group != "patient_2" || last.Mean != 9.0 || last.StdDev != 0 {
		t.Fatalf("single-well group should average to itself: %+v", last)
	}
}

func TestAverageEmptyGroupsYieldNothing(t *testing.T) {
	avg := replicate.Average(nil, map[string][]string{"g_1": {"A1"}})
	if len(avg) != 0 {
		t.Fatalf("expected no output for empty readings, got %+v", avg)
	}
}

func TestLoadRunsCombinesDirectories(t *testing.T) {
	base := t.TempDir()
	runA := filepath.Join(base, "run_a")
	runB := filepath.Join(base, "run_b")
	for _, dir := range []string{runA, runB} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	csv := "Well,Well Position,Reading,Temperature,Fluorescence,Derivative,Target Name\n" +
		"1,A1,1,60.0,1.25,0.01,RNaseP\n"
	if err := os.WriteFile(filepath.Join(runA, "melt_curve_data.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := os.WriteFile(filepath.Join(runB, "melt_curve_data.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	readings, err := replicate.LoadRuns([]string{runA, runB, filepath.Join(base, "missing")}, curves.KindMelt)
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 combined readings, got %d", len(readings))
	}
	if readings[0].X != 60.0 || readings[0].Value != 1.25 || readings[0].Aux != 0.01 {
		t.Fatalf("unexpected reading: %+v", readings[0])
	}
}

func TestLoadRunsErrorsWhenNothingFound(t *testing.T) {
	if _, err := replicate.LoadRuns([]string{t.TempDir()}, curves.KindAmplification); err == nil {
		t.Fatal("expected error when no artifacts exist")
	}
}
