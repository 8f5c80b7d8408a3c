package garminanalyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/bndxn/secure-app/pkg/bootstrap"
	"github.com/bndxn/secure-app/pkg/coach"
	"github.com/bndxn/secure-app/pkg/domain/window"
	"github.com/bndxn/secure-app/pkg/framework"
	"github.com/bndxn/secure-app/pkg/garmin"
	"github.com/bndxn/secure-app/pkg/testing/mocks"
)

func testService(store *mocks.MockBlobStore, secrets *mocks.MockSecretStore) *bootstrap.Service {
	return &bootstrap.Service{
		Store:   store,
		Secrets: secrets,
		Config: &bootstrap.Config{
			ProjectID:       "test-project",
			Bucket:          "test-bucket",
			AnalysisPrefix:  "run-analysis/",
			TrainingPlanKey: "training-plan.txt",
			GarminSecret:    "garmin-credentials",
			ContextDays:     7,
			TriggerHours:    12,
			FetchCount:      30,
			CacheRoot:       "/tmp",
		},
	}
}

func runHandler(t *testing.T, svc *bootstrap.Service, api garmin.API, model coach.ModelInvoker) (interface{}, error) {
	t.Helper()
	e := event.New()
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")

	var outputs interface{}
	wrapped := framework.WrapCloudEvent("garmin-analyzer", svc, func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		var err error
		outputs, err = analyzeHandler(api, model)(ctx, e, fwCtx)
		return outputs, err
	})
	err := wrapped(context.Background(), e)
	return outputs, err
}

func TestAnalyzeHandlerNoTriggerRuns(t *testing.T) {
	store := &mocks.MockBlobStore{}
	svc := testService(store, &mocks.MockSecretStore{})

	api := &mocks.MockGarminAPI{
		ListFunc: func(ctx context.Context, start, limit int) ([]garmin.Activity, error) {
			return nil, nil
		},
	}
	model := &mocks.MockModel{}

	outputs, err := runHandler(t, svc, api, model)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	result, ok := outputs.(*coach.CycleResult)
	if !ok {
		t.Fatalf("outputs = %T, want *coach.CycleResult", outputs)
	}
	if result.RunsAnalyzed != 0 {
		t.Errorf("RunsAnalyzed = %d, want 0", result.RunsAnalyzed)
	}
	if !strings.Contains(result.Message, "No runs in the last") {
		t.Errorf("Message = %q", result.Message)
	}
	if len(store.Writes) != 0 {
		t.Errorf("bundle written with no trigger runs")
	}
}

func TestAnalyzeHandlerFetchFailure(t *testing.T) {
	svc := testService(&mocks.MockBlobStore{}, &mocks.MockSecretStore{})

	api := &mocks.MockGarminAPI{
		LoginFunc: func(ctx context.Context) error { return errors.New("bad credentials") },
	}

	if _, err := runHandler(t, svc, api, &mocks.MockModel{}); err == nil {
		t.Fatal("expected error when login fails")
	}
}

func TestServeCycleReturnsStatusJSON(t *testing.T) {
	store := &mocks.MockBlobStore{}
	svc := testService(store, &mocks.MockSecretStore{})

	// One hour old: inside both the context and trigger windows.
	start := time.Now().UTC().Add(-time.Hour).Format(window.StartTimeLayout)
	run := garmin.Activity{ActivityID: 101, StartTimeLocal: start}
	run.ActivityType.TypeKey = "running"

	api := &mocks.MockGarminAPI{
		ListFunc: func(ctx context.Context, start, limit int) ([]garmin.Activity, error) {
			return []garmin.Activity{run}, nil
		},
		DownloadFunc: func(ctx context.Context, activityID int64, format garmin.DownloadFormat) ([]byte, error) {
			return nil, errors.New("no file")
		},
	}
	model := &mocks.MockModel{
		GenerateFunc: func(ctx context.Context, prompt string, maxOutputTokens int32) (string, error) {
			return "Good week.", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	serveCycle(rec, req, svc, api, model)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var result coach.CycleResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if result.RunsAnalyzed != 1 {
		t.Errorf("runs_analyzed = %d, want 1", result.RunsAnalyzed)
	}
	if result.TotalActivitiesFetched != 1 {
		t.Errorf("total_activities_fetched = %d, want 1", result.TotalActivitiesFetched)
	}
	if !strings.Contains(result.Message, "Coach analysis complete") {
		t.Errorf("message = %q", result.Message)
	}
	if result.OutputKey == "" {
		t.Error("output_key missing from response")
	}
	if len(store.Writes) != 1 {
		t.Errorf("bundle written %d times, want 1", len(store.Writes))
	}
}

func TestServeCycleFailureReturnsError(t *testing.T) {
	svc := testService(&mocks.MockBlobStore{}, &mocks.MockSecretStore{})

	api := &mocks.MockGarminAPI{
		LoginFunc: func(ctx context.Context) error { return errors.New("bad credentials") },
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	serveCycle(rec, req, svc, api, &mocks.MockModel{})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error response not valid JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("error field missing from response")
	}
}

func TestAnalyzeRunsWrapsInitError(t *testing.T) {
	origSvc, origErr := svc, svcErr
	defer func() { svc, svcErr = origSvc, origErr }()

	initErr := errors.New("no credentials available")
	svc, svcErr = nil, initErr
	svcOnce.Do(func() {}) // consume the once so initService reports svcErr

	err := AnalyzeRuns(context.Background(), event.New())
	if err == nil {
		t.Fatal("expected error when service init fails")
	}
	if !errors.Is(err, initErr) {
		t.Errorf("init error not wrapped: %v", err)
	}
}

func TestGarminCredentials(t *testing.T) {
	secrets := &mocks.MockSecretStore{
		GetSecretFunc: func(ctx context.Context, projectID, name string) (string, error) {
			if projectID != "test-project" || name != "garmin-credentials" {
				t.Errorf("looked up %s/%s", projectID, name)
			}
			return `{"username":"runner@example.com","password":"hunter2"}`, nil
		},
	}
	svc := testService(&mocks.MockBlobStore{}, secrets)

	creds, err := garminCredentials(context.Background(), svc)
	if err != nil {
		t.Fatalf("garminCredentials: %v", err)
	}
	if creds.Username != "runner@example.com" || creds.Password != "hunter2" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestGarminCredentialsIncomplete(t *testing.T) {
	secrets := &mocks.MockSecretStore{
		GetSecretFunc: func(ctx context.Context, projectID, name string) (string, error) {
			return `{"username":"runner@example.com"}`, nil
		},
	}
	svc := testService(&mocks.MockBlobStore{}, secrets)

	if _, err := garminCredentials(context.Background(), svc); err == nil {
		t.Fatal("expected error for secret without password")
	}
}
