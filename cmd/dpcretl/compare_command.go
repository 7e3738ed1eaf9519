package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"dpcretl/internal/curves"
	"dpcretl/internal/replicate"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var (
		runDirs    []string
		dataType   string
		outputPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:         "compare",
		Short:       "Average replicate groups across one or more run directories",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Long: "compare reads the cleaned curve CSVs from the given run directories,\n" +
			"groups wells by the replicate assignments recorded in each run's\n" +
			"metadata.json, and reports mean and standard deviation per measurement\n" +
			"point.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(runDirs) == 0 {
				return errors.New("at least one --run directory is required")
			}
			kind, err := curves.ParseKind(dataType)
			if err != nil {
				return err
			}

			readings, err := replicate.LoadRuns(runDirs, kind)
			if err != nil {
				return err
			}
			groups, err := collectReplicateGroups(cmd, runDirs)
			if err != nil {
				return err
			}
			averaged := replicate.Average(readings, groups)
			if len(averaged) == 0 {
				return errors.New("no replicate groups matched the loaded readings")
			}

			if outputPath != "" {
				if err := writeAveragedCSV(outputPath, averaged); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d averaged points to %s\n", len(averaged), outputPath)
				return nil
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), averaged)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAveragedTable(averaged))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&runDirs, "run", nil, "Run directory to include (repeatable)")
	cmd.Flags().StringVar(&dataType, "data-type", string(curves.KindMelt), "Curve to compare: melt or amplification")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the averaged points as CSV to this path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the averaged points as JSON")
	return cmd
}

// collectReplicateGroups merges the replicate assignments of every run.
// Runs without metadata.json are tolerated with a warning so raw artifact
// directories can still be compared by the groups the other runs define.
func collectReplicateGroups(cmd *cobra.Command, dirs []string) (map[string][]string, error) {
	groups := make(map[string][]string)
	loaded := 0
	for _, dir := range dirs {
		meta, err := replicate.LoadMetadata(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s has no metadata.json, skipping its replicate groups\n", dir)
				continue
			}
			return nil, err
		}
		loaded++
		for name, positions := range meta.Replicates {
			groups[name] = mergePositions(groups[name], positions)
		}
	}
	if loaded == 0 {
		return nil, errors.New("none of the run directories contain metadata.json")
	}
	return groups, nil
}

func mergePositions(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p] = struct{}{}
	}
	for _, p := range extra {
		if _, ok := seen[p]; !ok {
			existing = append(existing, p)
			seen[p] = struct{}{}
		}
	}
	return existing
}

func writeAveragedCSV(path string, averaged []replicate.Averaged) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&averaged, file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
