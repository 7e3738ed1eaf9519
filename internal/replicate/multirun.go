package replicate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"dpcretl/internal/curves"
	"dpcretl/internal/runmeta"
)

// LoadRuns reads the named curve artifact from each run directory and
// combines the readings for cross-run comparison. Directories without the
// artifact are skipped; combining zero runs is an error.
func LoadRuns(dirs []string, kind curves.Kind) ([]curves.Reading, error) {
	var combined []curves.Reading
	loaded := 0

	for _, dir := range dirs {
		path := filepath.Join(dir, kind.CSVName())
		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		readings, err := decodeCSV(file, kind)
		closeErr := file.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if closeErr != nil {
			return nil, closeErr
		}
		combined = append(combined, readings...)
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("no %s artifacts found under the given run directories", kind.CSVName())
	}
	return combined, nil
}

func decodeCSV(file *os.File, kind curves.Kind) ([]curves.Reading, error) {
	if kind == curves.KindAmplification {
		var rows []curves.AmplificationCSVRow
		if err := gocsv.UnmarshalFile(file, &rows); err != nil {
			return nil, err
		}
		return curves.FromAmplificationRows(rows), nil
	}
	var rows []curves.MeltCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, err
	}
	return curves.FromMeltRows(rows), nil
}

// LoadMetadata reads the metadata.json of a run directory. The replicate map
// of the first run anchors cross-run averaging.
func LoadMetadata(dir string) (*runmeta.RunMetadata, error) {
	path := filepath.Join(dir, "metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run metadata: %w", err)
	}
	var meta runmeta.RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &meta, nil
}
