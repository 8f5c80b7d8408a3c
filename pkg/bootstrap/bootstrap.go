package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"

	shared "github.com/bndxn/secure-app/pkg"
	infrasecrets "github.com/bndxn/secure-app/pkg/infrastructure/secrets"
	infrastorage "github.com/bndxn/secure-app/pkg/infrastructure/storage"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID       string
	Bucket          string
	AnalysisPrefix  string
	TrainingPlanKey string
	GarminSecret    string
	GeminiAPIKey    string
	ContextDays     int
	TriggerHours    int
	FetchCount      int
	CacheRoot       string
}

// Service holds initialized dependencies
type Service struct {
	Store   shared.BlobStore
	Secrets shared.SecretStore
	Config  *Config
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID // Fallback
	}

	return &Config{
		ProjectID:       projectID,
		Bucket:          envOr("GCS_BUCKET", shared.DefaultBucket),
		AnalysisPrefix:  envOr("ANALYSIS_PREFIX", shared.DefaultAnalysisPrefix),
		TrainingPlanKey: envOr("TRAINING_PLAN_OBJECT", shared.DefaultTrainingPlanKey),
		GarminSecret:    envOr("GARMIN_SECRET_NAME", shared.DefaultGarminSecretName),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		ContextDays:     envIntOr("CONTEXT_DAYS", shared.DefaultContextDays),
		TriggerHours:    envIntOr("TRIGGER_HOURS", shared.DefaultTriggerHours),
		FetchCount:      envIntOr("FETCH_COUNT", shared.DefaultFetchCount),
		CacheRoot:       envOr("CACHE_ROOT", os.TempDir()),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

// WithAttrs implements slog.Handler
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false // stop
		}
		return true
	})

	if comp != "" {
		newMsg := fmt.Sprintf("[%s] %s", comp, r.Message)
		newRecord := slog.NewRecord(r.Time, r.Level, newMsg, r.PC)
		// The 'component' attribute stays in the structured payload even
		// though it is also baked into the message.
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger() {
	opts := GetSlogHandlerOptions(slog.LevelInfo)
	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(&ComponentHandler{Handler: handler})
	slog.SetDefault(logger)
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	logLevelStr := os.Getenv("LOG_LEVEL")
	var level slog.Level
	switch strings.ToLower(logLevelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := GetSlogHandlerOptions(level)
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context) (*Service, error) {
	InitLogger()
	cfg := LoadConfig()

	slog.Info("Initializing service", "project_id", cfg.ProjectID, "bucket", cfg.Bucket)

	gcsClient, err := storage.NewClient(ctx)
	if err != nil {
		slog.Error("Storage init failed", "error", err)
		return nil, fmt.Errorf("storage init: %w", err)
	}

	smClient, err := secretmanager.NewClient(ctx)
	if err != nil {
		slog.Error("Secret Manager init failed", "error", err)
		return nil, fmt.Errorf("secret manager init: %w", err)
	}

	return &Service{
		Store:   &infrastorage.StorageAdapter{Client: gcsClient},
		Secrets: &infrasecrets.SecretsAdapter{Client: smClient},
		Config:  cfg,
	}, nil
}
