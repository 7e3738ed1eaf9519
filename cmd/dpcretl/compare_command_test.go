package main

import (
	"os"
	"path/filepath"
	"testing"

	"dpcretl/internal/testsupport"
)

// runTwice executes the pipeline over two fixture workbooks with distinct
// run end times and returns both run directories.
func runTwice(t *testing.T, env *cliTestEnv) (string, string) {
	t.Helper()

	first := testsupport.DefaultSpec()
	inputA := testsupport.WriteWorkbook(t, t.TempDir(), first)
	if _, _, err := runCLI(t, []string{"--input", inputA, "--no-plots"}, env.configPath); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := testsupport.DefaultSpec()
	second.RunEndTime = "2023-05-03 09:15:00 EDT"
	inputB := testsupport.WriteWorkbook(t, t.TempDir(), second)
	if _, _, err := runCLI(t, []string{"--input", inputB, "--no-plots"}, env.configPath); err != nil {
		t.Fatalf("second run: %v", err)
	}

	return filepath.Join(env.cfg.Paths.OutputDir, "run_2023-05-02_143122"),
		filepath.Join(env.cfg.Paths.OutputDir, "run_2023-05-03_091500")
}

func TestCompareWritesCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	dirA, dirB := runTwice(t, env)

	target := filepath.Join(env.baseDir, "combined.csv")
	out, _, err := runCLI(t, []string{
		"compare",
		"--run", dirA,
		"--run", dirB,
		"--data-type", "melt",
		"--output", target,
	}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Wrote")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read combined CSV: %v", err)
	}
	requireContains(t, string(data), "Replicate Group")
}

func TestCompareRendersTable(t *testing.T) {
	env := setupCLITestEnv(t)
	dirA, _ := runTwice(t, env)

	out, _, err := runCLI(t, []string{"compare", "--run", dirA, "--data-type", "amplification"}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Mean")
}

func TestCompareRejectsUnknownDataType(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"compare", "--run", env.baseDir, "--data-type", "sigmoid"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown data type")
	}
}

func TestCompareRequiresRunDirectories(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"compare"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when no --run directories are given")
	}
}
