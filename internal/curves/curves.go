// Package curves defines the curve-reading model shared by the loader,
// cleaner, summarizer, and reporters.
//
// Both instrument curve types map onto one reading shape: X holds the
// temperature (melt) or cycle number (amplification), Value holds the
// fluorescence measurement the pipeline analyzes (raw fluorescence for melt,
// delta Rn for amplification), and Aux carries the companion column
// (derivative, Rn).
package curves

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which instrument curve a dataset came from.
type Kind string

const (
	KindMelt          Kind = "melt"
	KindAmplification Kind = "amplification"
)

// ParseKind converts a user-supplied curve name into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(KindMelt):
		return KindMelt, nil
	case string(KindAmplification):
		return KindAmplification, nil
	default:
		return "", fmt.Errorf("unknown curve type %q (expected %s or %s)", raw, KindMelt, KindAmplification)
	}
}

// Sheet returns the workbook sheet name that carries this curve kind.
func (k Kind) Sheet() string {
	if k == KindAmplification {
		return "Amplification Data"
	}
	return "Melt Curve Raw Data"
}

// XLabel names the x axis for this curve kind.
func (k Kind) XLabel() string {
	if k == KindAmplification {
		return "Cycle"
	}
	return "Temperature"
}

// ValueLabel names the measured value column for this curve kind.
func (k Kind) ValueLabel() string {
	if k == KindAmplification {
		return "Delta Rn"
	}
	return "Fluorescence"
}

// RawReading is one uncleaned row as read from the workbook. Numeric fields
// stay strings until the cleaner has sanitized and parsed them.
type RawReading struct {
	Row          int // 1-based workbook row, for anomaly reports
	Well         string
	WellPosition string
	Target       string
	ReadingIndex string // melt only
	X            string
	Value        string
	Aux          string
}

// Reading is one validated measurement point.
type Reading struct {
	Well         string
	WellPosition string
	Target       string
	ReadingIndex int
	X            float64
	Value        float64
	Aux          float64
}

// Dataset groups the raw readings of one curve type.
type Dataset struct {
	Kind Kind
	Raw  []RawReading
}

// ByWell groups readings by well identifier, preserving input order within
// each well.
func ByWell(readings []Reading) map[string][]Reading {
	grouped := make(map[string][]Reading)
	for _, r := range readings {
		grouped[r.Well] = append(grouped[r.Well], r)
	}
	return grouped
}

// Wells returns the sorted set of well identifiers present in readings.
func Wells(readings []Reading) []string {
	seen := make(map[string]struct{})
	for _, r := range readings {
		seen[r.Well] = struct{}{}
	}
	wells := make([]string, 0, len(seen))
	for well := range seen {
		wells = append(wells, well)
	}
	sort.Strings(wells)
	return wells
}

// Targets returns the sorted set of non-empty target names present in
// readings.
func Targets(readings []Reading) []string {
	seen := make(map[string]struct{})
	for _, r := range readings {
		if r.Target == "" {
			continue
		}
		seen[r.Target] = struct{}{}
	}
	targets := make([]string, 0, len(seen))
	for target := range seen {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}
