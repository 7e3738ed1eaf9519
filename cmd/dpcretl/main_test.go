package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dpcretl/internal/etl"
	"dpcretl/internal/testsupport"
)

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, []string{"-v"}, "")
	if err != nil {
		t.Fatalf("version flag: %v", err)
	}
	requireContains(t, out, "ETL Script Version: "+etl.Version)
}

func TestRootRunWritesRunDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteWorkbook(t, env.cfg.Paths.InputDir, testsupport.DefaultSpec())

	out, _, err := runCLI(t, []string{"--input", input}, env.configPath)
	if err != nil {
		t.Fatalf("root run: %v", err)
	}
	requireContains(t, out, "ETL completed")
	requireContains(t, out, "Valid wells: 2")

	runDir := filepath.Join(env.cfg.Paths.OutputDir, "run_2023-05-02_143122")
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); err != nil {
		t.Fatalf("expected metadata.json: %v", err)
	}
}

func TestRootRunDefaultInputPath(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteWorkbook(t, env.cfg.Paths.InputDir, testsupport.DefaultSpec())

	// The fixture is written as input.xlsx, so no --input flag is needed.
	_, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root run with default input: %v", err)
	}
}

func TestRootRunDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteWorkbook(t, env.cfg.Paths.InputDir, testsupport.DefaultSpec())

	out, _, err := runCLI(t, []string{"--input", input, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "dry run")

	entries, err := os.ReadDir(env.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run created %d entries", len(entries))
	}
}

func TestRootRunJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteWorkbook(t, env.cfg.Paths.InputDir, testsupport.DefaultSpec())

	out, _, err := runCLI(t, []string{"--input", input, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("json run: %v", err)
	}

	var doc struct {
		RunDir  string `json:"run_dir"`
		Summary struct {
			ValidWells int `json:"num_valid_wells"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, out)
	}
	if doc.RunDir == "" {
		t.Error("run_dir missing from JSON output")
	}
	if doc.Summary.ValidWells != 2 {
		t.Errorf("num_valid_wells = %d, want 2", doc.Summary.ValidWells)
	}
}

func TestRootRunMissingInputFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"--input", filepath.Join(env.baseDir, "absent.xlsx")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input workbook")
	}
}
