package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	shared "github.com/bndxn/secure-app/pkg"
	"github.com/bndxn/secure-app/pkg/bootstrap"
	"github.com/bndxn/secure-app/pkg/domain/window"
	"github.com/bndxn/secure-app/pkg/types"
)

const (
	defaultTrainingPlan = "No specific training plan provided."
	bundleTimestampFmt  = "2006-01-02_15-04-05"

	analysisMaxTokens = 512 // prompt asks for at most 250 words
	runListMaxTokens  = 2048
)

// Analyzer runs one coaching cycle over fetched activities: window the
// context, render the run list, ask the model for the review, persist the
// bundle.
type Analyzer struct {
	Store  shared.BlobStore
	Model  ModelInvoker
	Config *bootstrap.Config
	Logger *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewAnalyzer(store shared.BlobStore, model ModelInvoker, cfg *bootstrap.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{Store: store, Model: model, Config: cfg, Logger: logger, now: time.Now}
}

// CycleResult is the status summary of one analysis cycle.
type CycleResult struct {
	Message                string `json:"message"`
	RunsAnalyzed           int    `json:"runs_analyzed"`
	RunsInContext          int    `json:"runs_in_context,omitempty"`
	TotalActivitiesFetched int    `json:"total_activities_fetched"`
	OutputKey              string `json:"output_key,omitempty"`
}

// ProcessCycle applies the context and trigger windows to the fetched
// activities and, when a fresh run exists, produces and persists one
// analysis bundle covering all of them.
func (a *Analyzer) ProcessCycle(ctx context.Context, fetched []types.ActivityRecord) (*CycleResult, error) {
	now := a.now()

	contextActivities := window.WithinDays(fetched, a.Config.ContextDays, now)
	a.Logger.Info("Windowed activities",
		"fetched", len(fetched),
		"in_context", len(contextActivities),
		"context_days", a.Config.ContextDays,
	)

	triggerRuns := window.TriggerRuns(contextActivities, a.Config.TriggerHours, now)
	if len(triggerRuns) == 0 {
		a.Logger.Info("No runs in trigger window, nothing to analyze", "trigger_hours", a.Config.TriggerHours)
		return &CycleResult{
			Message:                fmt.Sprintf("No runs in the last %d hours", a.Config.TriggerHours),
			TotalActivitiesFetched: len(fetched),
		}, nil
	}

	trainingPlan := a.TrainingPlan(ctx)

	var contextRuns []types.ActivityRecord
	for _, act := range contextActivities {
		if act.ActivityType == "running" {
			contextRuns = append(contextRuns, act)
		}
	}

	runsHTML := a.RunListHTML(ctx, contextRuns)

	a.Logger.Info("Requesting coach analysis", "context_runs", len(contextRuns))
	analysis, err := a.Analyze(ctx, runsHTML, trainingPlan)
	if err != nil {
		return nil, fmt.Errorf("coach analysis: %w", err)
	}

	outputKey, err := a.SaveBundle(ctx, &triggerRuns[0], analysis, contextActivities, runsHTML)
	if err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	return &CycleResult{
		Message:                "Coach analysis complete (last 7 days review + next 3 days look-ahead)",
		RunsAnalyzed:           len(triggerRuns),
		RunsInContext:          len(contextRuns),
		TotalActivitiesFetched: len(fetched),
		OutputKey:              outputKey,
	}, nil
}

// TrainingPlan reads the plan from storage; a missing or unreadable plan
// degrades to a default rather than failing the cycle.
func (a *Analyzer) TrainingPlan(ctx context.Context) string {
	data, err := a.Store.Read(ctx, a.Config.Bucket, a.Config.TrainingPlanKey)
	if err != nil {
		a.Logger.Warn("Training plan not readable, using default", "key", a.Config.TrainingPlanKey, "error", err)
		return defaultTrainingPlan
	}
	return string(data)
}

// RunListHTML renders the context runs as an HTML list via the model. Any
// failure degrades to a placeholder list; this never fails the cycle.
func (a *Analyzer) RunListHTML(ctx context.Context, runs []types.ActivityRecord) string {
	if len(runs) == 0 {
		return "<ul><li>No recent runs.</li></ul>"
	}

	prompt, err := BuildRunListPrompt(runs)
	if err != nil {
		a.Logger.Warn("Run list prompt build failed, using fallback", "error", err)
		return "<ul><li>Run list unavailable.</li></ul>"
	}

	html, err := a.Model.Generate(ctx, prompt, runListMaxTokens)
	if err != nil {
		a.Logger.Warn("Run list generation failed, using fallback", "error", err)
		return "<ul><li>Run list unavailable.</li></ul>"
	}

	html = stripFences(strings.TrimSpace(html))
	if html == "" {
		return "<ul><li>No runs.</li></ul>"
	}
	return html
}

// Analyze asks the model for the coaching text. Unlike the run list, a
// failure here is fatal: the analysis is the whole point of the cycle.
func (a *Analyzer) Analyze(ctx context.Context, runsContext, trainingPlan string) (string, error) {
	prompt := BuildAnalysisPrompt(runsContext, trainingPlan, a.now())
	analysis, err := a.Model.Generate(ctx, prompt, analysisMaxTokens)
	if err != nil {
		return "", err
	}
	a.Logger.Info("Received analysis from model")
	return analysis, nil
}

// SaveBundle persists the analysis bundle. Only running activities from the
// context window are stored, most recent first.
func (a *Analyzer) SaveBundle(ctx context.Context, triggerRun *types.ActivityRecord, analysis string, contextActivities []types.ActivityRecord, recentRunsHTML string) (string, error) {
	timestamp := a.now().Format(bundleTimestampFmt)
	key := a.Config.AnalysisPrefix + timestamp + "_analysis.json"

	var runs []types.ActivityRecord
	for _, act := range contextActivities {
		if act.ActivityType == "running" {
			runs = append(runs, act)
		}
	}
	// Lexicographic order on "YYYY-MM-DD HH:MM:SS" strings is chronological.
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartTimeLocal > runs[j].StartTimeLocal
	})

	bundle := types.AnalysisBundle{
		Timestamp:              timestamp,
		AnalyzedRun:            triggerRun,
		RecentRuns:             runs,
		Analysis:               analysis,
		Suggestion:             analysis,
		RecentRunsHTML:         recentRunsHTML,
		ContextActivitiesCount: len(runs),
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}
	if err := a.Store.Write(ctx, a.Config.Bucket, key, data); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}

	a.Logger.Info("Saved analysis bundle", "bucket", a.Config.Bucket, "key", key)
	return key, nil
}

// stripFences removes a surrounding markdown code fence if the model wrapped
// its output in one.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
