// Package summary computes the QC aggregates reported for each run.
package summary

import (
	"math"

	"github.com/montanaflynn/stats"

	"dpcretl/internal/curves"
)

// MeltStats aggregates the melt curve readings.
type MeltStats struct {
	Wells              int      `json:"num_wells"`
	Targets            []string `json:"unique_targets"`
	TemperatureMin     float64  `json:"temperature_min"`
	TemperatureMax     float64  `json:"temperature_max"`
	FluorescenceMean   float64  `json:"fluorescence_mean"`
	FluorescenceStdDev float64  `json:"fluorescence_stddev"`
}

// AmplificationStats aggregates the amplification readings.
type AmplificationStats struct {
	Wells         int      `json:"num_amplified_wells"`
	Targets       []string `json:"unique_targets"`
	MaxCycle      int      `json:"num_cycles"`
	DeltaRnMean   float64  `json:"delta_rn_mean"`
	DeltaRnStdDev float64  `json:"delta_rn_stddev"`
}

// QCSummary is the derived aggregate for one run. It is recomputed fresh on
// every invocation, never updated incrementally.
type QCSummary struct {
	ValidWells      int                `json:"num_valid_wells"`
	Anomalies       int                `json:"num_anomalies"`
	TargetsDetected []string           `json:"targets_detected"`
	Melt            MeltStats          `json:"melt_curve"`
	Amplification   AmplificationStats `json:"amplification"`
}

// Build computes the QC summary from cleaned readings. Empty input yields a
// zero-valued summary rather than an error.
func Build(melt, amp []curves.Reading, anomalyCount int) QCSummary {
	s := QCSummary{
		Anomalies:       anomalyCount,
		TargetsDetected: curves.Targets(append(append([]curves.Reading(nil), melt...), amp...)),
	}

	allWells := make(map[string]struct{})
	for _, r := range melt {
		allWells[r.Well] = struct{}{}
	}
	for _, r := range amp {
		allWells[r.Well] = struct{}{}
	}
	s.ValidWells = len(allWells)

	s.Melt = buildMelt(melt)
	s.Amplification = buildAmplification(amp)
	return s
}

func buildMelt(readings []curves.Reading) MeltStats {
	m := MeltStats{
		Wells:   len(curves.Wells(readings)),
		Targets: curves.Targets(readings),
	}
	if len(readings) == 0 {
		return m
	}

	temps := make([]float64, 0, len(readings))
	fluor := make([]float64, 0, len(readings))
	for _, r := range readings {
		temps = append(temps, r.X)
		fluor = append(fluor, r.Value)
	}
	m.TemperatureMin = safeStat(stats.Min, temps)
	m.TemperatureMax = safeStat(stats.Max, temps)
	m.FluorescenceMean = safeStat(stats.Mean, fluor)
	m.FluorescenceStdDev = safeStat(stats.StandardDeviationSample, fluor)
	return m
}

func buildAmplification(readings []curves.Reading) AmplificationStats {
	a := AmplificationStats{
		Wells:   len(curves.Wells(readings)),
		Targets: curves.Targets(readings),
	}
	deltas := make([]float64, 0, len(readings))
	for _, r := range readings {
		if cycle := int(r.X); cycle > a.MaxCycle {
			a.MaxCycle = cycle
		}
		deltas = append(deltas, r.Value)
	}
	a.DeltaRnMean = safeStat(stats.Mean, deltas)
	a.DeltaRnStdDev = safeStat(stats.StandardDeviationSample, deltas)
	return a
}

// safeStat maps empty-input errors and non-finite results (sample stddev of a
// single reading) to zero; a zero-well run is reported, not failed.
func safeStat(fn func(stats.Float64Data) (float64, error), data []float64) float64 {
	value, err := fn(data)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
