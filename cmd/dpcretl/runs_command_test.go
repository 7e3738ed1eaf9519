package main

import (
	"testing"

	"dpcretl/internal/testsupport"
)

func TestRunsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs indexed")
}

func TestRunsListAfterRun(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteWorkbook(t, env.cfg.Paths.InputDir, testsupport.DefaultSpec())

	if _, _, err := runCLI(t, []string{"--input", input, "--no-plots"}, env.configPath); err != nil {
		t.Fatalf("root run: %v", err)
	}

	out, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "2023-05-02 14:31:22")
	requireContains(t, out, "RNaseP")
}

func TestRunsPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	runTwice(t, env)

	out, _, err := runCLI(t, []string{"runs", "prune", "--keep", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs prune: %v", err)
	}
	requireContains(t, out, "Removed 1 index records")

	out, _, err = runCLI(t, []string{"runs", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "2023-05-03 09:15:00")
}

func TestRunsPruneRejectsZeroKeep(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"runs", "prune", "--keep", "0"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for --keep 0")
	}
}
