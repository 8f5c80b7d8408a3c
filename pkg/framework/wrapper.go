// Package framework wraps cloud function handlers with per-invocation
// logging and error reporting.
package framework

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"

	"github.com/bndxn/secure-app/pkg/bootstrap"
	infrasentry "github.com/bndxn/secure-app/pkg/infrastructure/sentry"
)

// FrameworkContext contains dependencies injected by the framework.
type FrameworkContext struct {
	Service     *bootstrap.Service
	Logger      *slog.Logger
	ExecutionID string
}

// HandlerFunc is the signature for a cloud function handler.
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with execution-scoped logging and Sentry
// reporting. Each invocation gets its own execution ID so log lines from
// overlapping invocations stay attributable.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		triggerType := "pubsub"
		if e.Type() == "google.cloud.functions.http" {
			triggerType = "http"
		}

		logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
		var logLevel slog.Level
		switch logLevelStr {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}

		opts := bootstrap.GetSlogHandlerOptions(logLevel)
		logger := slog.New(slog.NewJSONHandler(os.Stdout, opts)).With("service", serviceName)

		execID := uuid.NewString()
		logger = logger.With("execution_id", execID)
		logger.Info("Function started", "trigger_type", triggerType)

		fwCtx := &FrameworkContext{
			Service:     svc,
			Logger:      logger,
			ExecutionID: execID,
		}

		outputs, handlerErr := handler(ctx, e, fwCtx)

		if handlerErr != nil {
			logger.Error("Function failed", "error", handlerErr)
			infrasentry.CaptureException(handlerErr, map[string]interface{}{
				"service":      serviceName,
				"execution_id": execID,
				"trigger_type": triggerType,
				"outputs":      outputs,
			}, logger)
			infrasentry.Flush(2 * time.Second)
			return handlerErr
		}

		logger.Info("Function completed successfully")
		return nil
	}
}
