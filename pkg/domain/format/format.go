// Package format holds the pure formatting helpers shared by the lap
// extractors and the prompt builder. Inputs are pointers because every value
// here originates from nullable platform fields.
package format

import (
	"fmt"
	"math"
	"strconv"
)

// ComputePace returns pace in minutes per kilometre, or nil unless both
// distance (metres) and duration (seconds) are present and strictly positive.
func ComputePace(distanceM, durationS *float64) *float64 {
	if distanceM == nil || durationS == nil {
		return nil
	}
	if *distanceM <= 0 || *durationS <= 0 {
		return nil
	}
	pace := (*durationS / 60.0) / (*distanceM / 1000.0)
	return &pace
}

// FormatPace renders a min/km pace as "M:SS min/km". The seconds component is
// rounded but an overflow to 60 is NOT carried into the minutes, so 5.9933
// renders as "5:60 min/km". Stored bundles already contain strings in this
// shape, so the quirk is kept.
func FormatPace(minPerKm *float64) *string {
	if minPerKm == nil {
		return nil
	}
	mins := int(*minPerKm)
	secs := int(math.Round((*minPerKm - float64(mins)) * 60))
	s := fmt.Sprintf("%d:%02d min/km", mins, secs)
	return &s
}

// FormatDuration renders seconds as "H:MM:SS", or "M:SS" when under an hour.
// A nil input renders as "?".
func FormatDuration(seconds *float64) string {
	if seconds == nil {
		return "?"
	}
	secs := int(math.Round(*seconds))
	h := secs / 3600
	rem := secs % 3600
	m := rem / 60
	s := rem % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatIntervalRow produces one display line for a lap:
//
//	"{label} - {distance}km - {duration} (duration) - {pace} pace - {hr} HR"
//
// Pace is taken from average speed when present and positive, otherwise
// derived from distance/duration. Missing values render as "?".
func FormatIntervalRow(label string, distanceM, durationS, avgSpeedMps, avgHR *float64) string {
	var pace *float64
	if avgSpeedMps != nil && *avgSpeedMps > 0 {
		p := (1000.0 / *avgSpeedMps) / 60.0
		pace = &p
	} else {
		pace = ComputePace(distanceM, durationS)
	}

	distStr := "?"
	if distanceM != nil {
		distStr = formatKm(*distanceM / 1000.0)
	}

	paceStr := "?"
	if p := FormatPace(pace); p != nil {
		paceStr = *p
	}

	hrStr := "?"
	if avgHR != nil {
		hrStr = strconv.Itoa(int(*avgHR))
	}

	return fmt.Sprintf("%s - %skm - %s (duration) - %s pace - %s HR",
		label, distStr, FormatDuration(durationS), paceStr, hrStr)
}

// RoundKm rounds a distance in kilometres to 2 decimals.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// RoundMinutes rounds a duration in minutes to 1 decimal.
func RoundMinutes(min float64) float64 {
	return math.Round(min*10) / 10
}

func formatKm(km float64) string {
	return strconv.FormatFloat(RoundKm(km), 'f', -1, 64)
}
