package main

import (
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-security-alert-watcher/internal/app"
	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	"github.com/mr1hm/go-security-alert-watcher/internal/lambdahost"
	"github.com/mr1hm/go-security-alert-watcher/internal/logging"
	"github.com/mr1hm/go-security-alert-watcher/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// One pipeline per Lambda instance, reused across invocations.
	adapter := lambdahost.NewAdapter(app.NewIngress(cfg, metrics.New()))

	slog.Info("Started monitoring process", "host", "lambda", "dry_run", cfg.Webhook.DryRun)
	lambda.Start(adapter.Handle)
}
