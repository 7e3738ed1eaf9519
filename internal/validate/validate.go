// Package validate cleans raw curve readings and records every value it
// rejects as an anomaly, so nothing is silently discarded.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"dpcretl/internal/curves"
)

// Kind classifies an anomaly.
type Kind string

const (
	KindNonNumeric  Kind = "non_numeric"
	KindNegative    Kind = "negative_value"
	KindDuplicate   Kind = "duplicate_point"
	KindMissingWell Kind = "missing_well"
)

// Anomaly records one rejected or flagged cell with enough context to locate
// it in the source workbook.
type Anomaly struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Well   string `json:"well,omitempty"`
	Kind   Kind   `json:"kind"`
	Value  string `json:"value,omitempty"`
	Detail string `json:"detail"`
}

// Options controls cleaning behavior.
type Options struct {
	// DecimalComma rewrites "3,14" style separators before parsing.
	DecimalComma bool
	// FlagNegative records negative measurements and keeps them out of the
	// cleaned set.
	FlagNegative bool
}

// Result holds the cleaned readings and the anomalies recorded while
// producing them.
type Result struct {
	Readings  []curves.Reading
	Anomalies []Anomaly
}

// Clean validates one raw dataset. It is idempotent: feeding the cleaned
// readings back through produces zero new anomalies. Duplicate (well, x)
// points are flagged and the first occurrence kept, never merged.
func Clean(ds curves.Dataset, opts Options) Result {
	sheet := ds.Kind.Sheet()
	auxRequired := ds.Kind == curves.KindAmplification

	result := Result{Readings: make([]curves.Reading, 0, len(ds.Raw))}
	seen := make(map[string]struct{}, len(ds.Raw))

	for _, raw := range ds.Raw {
		well := strings.TrimSpace(raw.Well)
		if well == "" {
			result.Anomalies = append(result.Anomalies, Anomaly{
				Sheet:  sheet,
				Row:    raw.Row,
				Kind:   KindMissingWell,
				Detail: "row has no well identifier",
			})
			continue
		}

		x, err := parseField(raw.X, opts)
		if err != nil {
			result.Anomalies = append(result.Anomalies, anomalyNonNumeric(sheet, raw.Row, well, ds.Kind.XLabel(), raw.X))
			continue
		}
		value, err := parseField(raw.Value, opts)
		if err != nil {
			result.Anomalies = append(result.Anomalies, anomalyNonNumeric(sheet, raw.Row, well, ds.Kind.ValueLabel(), raw.Value))
			continue
		}

		var aux float64
		if strings.TrimSpace(raw.Aux) == "" {
			if auxRequired {
				result.Anomalies = append(result.Anomalies, anomalyNonNumeric(sheet, raw.Row, well, "Rn", raw.Aux))
				continue
			}
		} else if aux, err = parseField(raw.Aux, opts); err != nil {
			result.Anomalies = append(result.Anomalies, anomalyNonNumeric(sheet, raw.Row, well, "companion value", raw.Aux))
			continue
		}

		if opts.FlagNegative && value < 0 {
			result.Anomalies = append(result.Anomalies, Anomaly{
				Sheet:  sheet,
				Row:    raw.Row,
				Well:   well,
				Kind:   KindNegative,
				Value:  raw.Value,
				Detail: fmt.Sprintf("negative %s excluded from statistics", strings.ToLower(ds.Kind.ValueLabel())),
			})
			continue
		}

		key := well + "|" + strconv.FormatFloat(x, 'g', -1, 64)
		if _, dup := seen[key]; dup {
			result.Anomalies = append(result.Anomalies, Anomaly{
				Sheet:  sheet,
				Row:    raw.Row,
				Well:   well,
				Kind:   KindDuplicate,
				Value:  raw.X,
				Detail: fmt.Sprintf("duplicate %s for well %s, first occurrence kept", strings.ToLower(ds.Kind.XLabel()), well),
			})
			continue
		}
		seen[key] = struct{}{}

		readingIndex := 0
		if idx := strings.TrimSpace(raw.ReadingIndex); idx != "" {
			if parsed, err := strconv.Atoi(idx); err == nil {
				readingIndex = parsed
			}
		}

		result.Readings = append(result.Readings, curves.Reading{
			Well:         well,
			WellPosition: strings.TrimSpace(raw.WellPosition),
			Target:       strings.TrimSpace(raw.Target),
			ReadingIndex: readingIndex,
			X:            x,
			Value:        value,
			Aux:          aux,
		})
	}
	return result
}

// SanitizeNumber normalizes a raw numeric cell: trims whitespace (including
// non-breaking spaces) and, when decimalComma is set, rewrites a lone
// decimal comma to a point. Values already using a decimal point are left
// untouched, so sanitization is idempotent.
func SanitizeNumber(raw string, decimalComma bool) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	if decimalComma && strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

func parseField(raw string, opts Options) (float64, error) {
	return strconv.ParseFloat(SanitizeNumber(raw, opts.DecimalComma), 64)
}

func anomalyNonNumeric(sheet string, row int, well, field, value string) Anomaly {
	return Anomaly{
		Sheet:  sheet,
		Row:    row,
		Well:   well,
		Kind:   KindNonNumeric,
		Value:  value,
		Detail: fmt.Sprintf("%s is not numeric after sanitization", field),
	}
}
