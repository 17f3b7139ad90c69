// Package app wires the ingress pipeline shared by every host binary.
package app

import (
	"log/slog"

	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	"github.com/mr1hm/go-security-alert-watcher/internal/ghclient"
	"github.com/mr1hm/go-security-alert-watcher/internal/metrics"
	"github.com/mr1hm/go-security-alert-watcher/internal/policy"
	"github.com/mr1hm/go-security-alert-watcher/internal/webhook"
)

// NewEngine builds the policy engine backed by real GitHub clients.
func NewEngine(cfg *config.Config, m *metrics.Metrics) *policy.Engine {
	return policy.NewEngine(
		ghclient.NewFactory(cfg.GitHub),
		policy.WithLogger(slog.Default()),
		policy.WithRecorder(m),
		policy.WithDryRun(cfg.Webhook.DryRun),
	)
}

// NewIngress builds the host-independent webhook handler.
func NewIngress(cfg *config.Config, m *metrics.Metrics) *webhook.Handler {
	dispatcher := webhook.NewDispatcher(cfg.Webhook.Secret, NewEngine(cfg, m), slog.Default())
	return webhook.NewHandler(dispatcher, slog.Default(), m)
}
