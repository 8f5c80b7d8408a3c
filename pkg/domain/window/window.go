// Package window selects activities inside trailing time windows. Filtering
// is pure and order-preserving; records whose start time cannot be parsed are
// dropped with a warning.
package window

import (
	"log/slog"
	"time"

	"github.com/bndxn/secure-app/pkg/types"
)

// StartTimeLayout is the naive local timestamp format the platform reports.
// Values are reinterpreted as UTC for window arithmetic.
const StartTimeLayout = "2006-01-02 15:04:05"

// WithinDays keeps activities whose start time is at or after now minus the
// given number of days.
func WithinDays(activities []types.ActivityRecord, days int, now time.Time) []types.ActivityRecord {
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return keepSince(activities, cutoff, false)
}

// TriggerRuns keeps running activities whose start time is at or after now
// minus the given number of hours. It is applied after WithinDays.
func TriggerRuns(activities []types.ActivityRecord, hours int, now time.Time) []types.ActivityRecord {
	cutoff := now.UTC().Add(-time.Duration(hours) * time.Hour)
	return keepSince(activities, cutoff, true)
}

func keepSince(activities []types.ActivityRecord, cutoff time.Time, runsOnly bool) []types.ActivityRecord {
	var kept []types.ActivityRecord
	for _, a := range activities {
		if runsOnly && a.ActivityType != "running" {
			continue
		}
		if a.StartTimeLocal == "" {
			continue
		}
		start, err := time.ParseInLocation(StartTimeLayout, a.StartTimeLocal, time.UTC)
		if err != nil {
			slog.Warn("could not parse start time", "start_time", a.StartTimeLocal)
			continue
		}
		if !start.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}
