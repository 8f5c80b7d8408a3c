package shared

const (
	ProjectID = "secure-app" // Can be overridden by env var in main if needed

	DefaultBucket           = "secure-app-data"
	DefaultAnalysisPrefix   = "run-analysis/"
	DefaultTrainingPlanKey  = "training-plan.txt"
	DefaultGarminSecretName = "garmin-credentials"

	// Time windows for the analysis cycle
	DefaultContextDays  = 7  // Include all runs from last 7 days for review and display
	DefaultTriggerHours = 12 // Only analyze if a run happened in the last 12 hours
	DefaultFetchCount   = 30

	// ScratchDirName is the only directory name the download cache wipe
	// routine will operate on.
	ScratchDirName = ".fitcache"
)
