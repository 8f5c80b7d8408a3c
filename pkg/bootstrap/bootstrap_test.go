package bootstrap

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Bucket != "secure-app-data" {
		t.Errorf("Bucket = %q, want %q", cfg.Bucket, "secure-app-data")
	}
	if cfg.AnalysisPrefix != "run-analysis/" {
		t.Errorf("AnalysisPrefix = %q, want %q", cfg.AnalysisPrefix, "run-analysis/")
	}
	if cfg.ContextDays != 7 {
		t.Errorf("ContextDays = %d, want 7", cfg.ContextDays)
	}
	if cfg.TriggerHours != 12 {
		t.Errorf("TriggerHours = %d, want 12", cfg.TriggerHours)
	}
	if cfg.FetchCount != 30 {
		t.Errorf("FetchCount = %d, want 30", cfg.FetchCount)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GCS_BUCKET", "other-bucket")
	t.Setenv("CONTEXT_DAYS", "14")
	t.Setenv("TRIGGER_HOURS", "not-a-number")

	cfg := LoadConfig()

	if cfg.Bucket != "other-bucket" {
		t.Errorf("Bucket = %q, want %q", cfg.Bucket, "other-bucket")
	}
	if cfg.ContextDays != 14 {
		t.Errorf("ContextDays = %d, want 14", cfg.ContextDays)
	}
	// Unparseable values fall back to the default.
	if cfg.TriggerHours != 12 {
		t.Errorf("TriggerHours = %d, want 12", cfg.TriggerHours)
	}
}
