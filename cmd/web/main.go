// Command web serves the coaching page backed by the analysis bundles in
// object storage.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/bndxn/secure-app/pkg/bootstrap"
	infrasentry "github.com/bndxn/secure-app/pkg/infrastructure/sentry"
	"github.com/bndxn/secure-app/pkg/web"
)

func main() {
	ctx := context.Background()

	svc, err := bootstrap.NewService(ctx)
	if err != nil {
		slog.Error("Service init failed", "error", err)
		os.Exit(1)
	}

	if err := infrasentry.Init(infrasentry.Config{
		DSN:         os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("ENVIRONMENT"),
		ServerName:  "web",
	}, slog.Default()); err != nil {
		slog.Error("Sentry init failed", "error", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger("web")
	server := web.New(svc.Store, svc.Config.Bucket, svc.Config.AnalysisPrefix, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Listening", "port", port)
	if err := http.ListenAndServe(":"+port, server); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
