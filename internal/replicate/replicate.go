// Package replicate averages curve readings across replicate wells, within a
// single run or across several run directories.
package replicate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"dpcretl/internal/curves"
)

// Averaged is one aggregated measurement point for a replicate group.
type Averaged struct {
	Group  string  `csv:"Replicate Group"`
	X      float64 `csv:"X"`
	Mean   float64 `csv:"Mean"`
	StdDev float64 `csv:"StdDev"`
	N      int     `csv:"N"`
}

// Average aggregates readings across the wells of each replicate group,
// keyed by measurement point. Groups with no matching wells are skipped.
// Output is ordered by group name, then x.
func Average(readings []curves.Reading, groups map[string][]string) []Averaged {
	byPosition := make(map[string][]curves.Reading)
	for _, r := range readings {
		byPosition[r.WellPosition] = append(byPosition[r.WellPosition], r)
	}

	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var result []Averaged
	for _, name := range groupNames {
		values := make(map[float64][]float64)
		for _, position := range groups[name] {
			for _, r := range byPosition[position] {
				values[r.X] = append(values[r.X], r.Value)
			}
		}
		if len(values) == 0 {
			continue
		}

		xs := make([]float64, 0, len(values))
		for x := range values {
			xs = append(xs, x)
		}
		sort.Float64s(xs)

		for _, x := range xs {
			sample := values[x]
			mean, _ := stats.Mean(sample)
			sd, err := stats.StandardDeviationSample(sample)
			if err != nil || math.IsNaN(sd) {
				sd = 0
			}
			result = append(result, Averaged{Group: name, X: x, Mean: mean, StdDev: sd, N: len(sample)})
		}
	}
	return result
}
