// Package types holds the records exchanged between the fetch, analysis and
// presentation layers. JSON field names are a storage contract: analysis
// bundles already written with these keys must stay readable.
package types

// Credentials is the Garmin Connect username/password pair resolved from the
// secrets service. It is passed explicitly into the fetch call, never via
// process environment.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ActivityRecord is one normalized fitness activity. Pointer fields are
// nullable in the stored JSON. Intervals is non-nil only for running
// activities whose lap file could be downloaded and parsed.
type ActivityRecord struct {
	ActivityID     int64    `json:"activityId,omitempty"`
	StartTimeLocal string   `json:"startTimeLocal"`
	ActivityType   string   `json:"activityType"`
	DistanceKm     *float64 `json:"distanceKm"`
	DurationMin    *float64 `json:"durationMin"`
	Name           *string  `json:"name"`
	Intervals      []string `json:"intervals"`
}

// AnalysisBundle is the object persisted once per analysis cycle. "Latest" is
// decided by storage last-modified time, not by anything inside the bundle.
// Suggestion mirrors Analysis; the web app reads the suggestion key.
type AnalysisBundle struct {
	Timestamp              string           `json:"timestamp"`
	AnalyzedRun            *ActivityRecord  `json:"analyzed_run"`
	RecentRuns             []ActivityRecord `json:"recent_runs"`
	Analysis               string           `json:"analysis"`
	Suggestion             string           `json:"suggestion"`
	RecentRunsHTML         string           `json:"recent_runs_html,omitempty"`
	ContextActivitiesCount int              `json:"context_activities_count"`
}
