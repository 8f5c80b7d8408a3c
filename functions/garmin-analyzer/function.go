// Package garminanalyzer is the scheduled cloud function that fetches recent
// Garmin activities, asks the coach for a review and persists the result.
package garminanalyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/bndxn/secure-app/pkg/bootstrap"
	"github.com/bndxn/secure-app/pkg/coach"
	"github.com/bndxn/secure-app/pkg/framework"
	"github.com/bndxn/secure-app/pkg/garmin"
	"github.com/bndxn/secure-app/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.CloudEvent("AnalyzeRuns", AnalyzeRuns)
	functions.HTTP("AnalyzeRunsHTTP", AnalyzeRunsHTTP)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx)
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// AnalyzeRuns is the CloudEvent entry point, triggered by the scheduler.
func AnalyzeRuns(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %w", err)
	}
	return framework.WrapCloudEvent("garmin-analyzer", svc, analyzeHandler(nil, nil))(ctx, e)
}

// AnalyzeRunsHTTP is the manual-invocation entry point. It runs the same
// cycle and answers with the structured status JSON the scheduler path only
// logs.
func AnalyzeRunsHTTP(w http.ResponseWriter, r *http.Request) {
	svc, err := initService(r.Context())
	if err != nil {
		slog.Error("Service init failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
		return
	}
	serveCycle(w, r, svc, nil, nil)
}

// serveCycle runs one analysis cycle through the framework wrapper and
// writes the resulting status to the HTTP response. The synthetic event
// carries the HTTP trigger type so the wrapper attributes the invocation
// correctly.
func serveCycle(w http.ResponseWriter, r *http.Request, svc *bootstrap.Service, api garmin.API, model coach.ModelInvoker) {
	w.Header().Set("Content-Type", "application/json")

	e := event.New()
	e.SetType("google.cloud.functions.http")
	e.SetSource(r.URL.Path)

	var result *coach.CycleResult
	handler := analyzeHandler(api, model)
	err := framework.WrapCloudEvent("garmin-analyzer", svc, func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		out, err := handler(ctx, e, fwCtx)
		if cycle, ok := out.(*coach.CycleResult); ok {
			result = cycle
		}
		return out, err
	})(r.Context(), e)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(result)
}

// analyzeHandler contains the business logic. api and model can be injected
// for testing; if nil, the real Garmin client and Gemini invoker are built
// from configuration.
func analyzeHandler(api garmin.API, model coach.ModelInvoker) framework.HandlerFunc {
	return func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		svc := fwCtx.Service
		logger := fwCtx.Logger

		if api == nil {
			creds, err := garminCredentials(ctx, svc)
			if err != nil {
				return nil, err
			}
			api = garmin.NewClient(creds)
		}
		if model == nil {
			model = coach.NewGeminiInvoker(svc.Config.GeminiAPIKey)
		}

		logger.Info("Fetching recent Garmin activities", "count", svc.Config.FetchCount)
		fetcher := garmin.NewFetcher(api, svc.Config.CacheRoot, logger)
		activities, err := fetcher.FetchRecent(ctx, svc.Config.FetchCount)
		if err != nil {
			return nil, fmt.Errorf("fetch activities: %w", err)
		}

		analyzer := coach.NewAnalyzer(svc.Store, model, svc.Config, logger)
		result, err := analyzer.ProcessCycle(ctx, activities)
		if err != nil {
			return nil, err
		}

		logger.Info("Cycle finished",
			"message", result.Message,
			"runs_analyzed", result.RunsAnalyzed,
			"output_key", result.OutputKey,
		)
		return result, nil
	}
}

// garminCredentials resolves the Garmin username/password from Secret
// Manager. The secret value is a JSON document with username and password
// fields.
func garminCredentials(ctx context.Context, svc *bootstrap.Service) (types.Credentials, error) {
	var creds types.Credentials

	raw, err := svc.Secrets.GetSecret(ctx, svc.Config.ProjectID, svc.Config.GarminSecret)
	if err != nil {
		return creds, fmt.Errorf("get garmin credentials: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return creds, fmt.Errorf("parse garmin credentials: %w", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("garmin credentials secret missing username or password")
	}
	return creds, nil
}
