// Package coach turns a week of running data into a short narrative review
// and a three-day look-ahead, using a generative model.
package coach

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bndxn/secure-app/pkg/types"
)

// runListLimit caps how many runs the formatting prompt carries.
const runListLimit = 15

// promptDateLayout renders like "Monday 24 February".
const promptDateLayout = "Monday 02 January"

// runSummary is the projection of a run that the formatting prompt sees.
type runSummary struct {
	StartTimeLocal string   `json:"startTimeLocal"`
	Name           *string  `json:"name"`
	DistanceKm     *float64 `json:"distanceKm"`
	DurationMin    *float64 `json:"durationMin"`
	Intervals      []string `json:"intervals"`
}

// BuildRunListPrompt asks the model to render the given runs as a single
// HTML unordered list. At most runListLimit runs are included.
func BuildRunListPrompt(runs []types.ActivityRecord) (string, error) {
	if len(runs) > runListLimit {
		runs = runs[:runListLimit]
	}
	summaries := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, runSummary{
			StartTimeLocal: r.StartTimeLocal,
			Name:           r.Name,
			DistanceKm:     r.DistanceKm,
			DurationMin:    r.DurationMin,
			Intervals:      r.Intervals,
		})
	}

	runsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal runs for prompt: %w", err)
	}

	return fmt.Sprintf(`Convert these running activities into a single HTML unordered list (<ul>). Rules:
- One <li> per run. Format: [Date from startTimeLocal YYYY-MM-DD] - [name], [distanceKm] km, [durationMin] as MM:SS, pace if derivable, avg HR if in intervals.
- If an activity has multiple "Active" intervals (intervals array), output one parent <li> with a nested <ul> of interval lines.
- Output valid HTML only: just the <ul> and <li> elements. No <html>, <head>, <body>. No markdown.
- Convert duration minutes to MM:SS. Omit rest intervals (very short or slow). Use "?" for missing pace/HR.
Activities JSON:
%s`, runsJSON), nil
}

// BuildAnalysisPrompt produces the coaching prompt: a week-in-review plus a
// three-day look-ahead, anchored on the given date.
func BuildAnalysisPrompt(runsContext, trainingPlan string, now time.Time) string {
	todayStr := now.UTC().Format(promptDateLayout)
	return fmt.Sprintf(`You are an expert running coach. Today's date: %s.

Training Plan:
%s

All Runs (Last 7 Days):
%s

Write exactly two parts. Use plain text only (no markdown, no **).

1) The last week: One short paragraph only. Be encouraging. Say how many runs they completed vs how many were planned (e.g. "Good job on completing 5/6 of your runs"). Say if overall paces are in line with the plan. Sometimes the runner might move workouts around or skip a workout. Report on the total distance run and the total distance planned. Mention only 1-2 specific concerns if relevant (e.g. "on your 10K your HR was higher than it should be"). Keep it to 2-3 sentences.

2) The next three days: Start with the line "Next three days:" then list the next 3 calendar days, each on its own line with a dash. Use "today (date)", "tomorrow (date)", and the day name for the third (e.g. "Thursday 26th"). Sometimes the runner might move workouts around or skip a workout. Consider what workouts are scheduled and whether they need to be moved around slightly. For each day give only: the workout type and a brief pace or effort hint (e.g. "16.1km slow pace, e.g. 5-6:00" or "cross-training, relaxed" or "rest: no running"). Do not include warm-up/cool-down instructions or long explanations. One short line per day.

Example style for part 2:
Next three days:
- today (24th): cross-training, relaxed
- tomorrow (25th): 16.1km slow pace, e.g. 5-6:00
- Thursday (26th): easy / recovery

Maximum 250 words total.`, todayStr, trainingPlan, runsContext)
}
