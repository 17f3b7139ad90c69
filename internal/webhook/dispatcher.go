package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/events"
	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

var ErrInvalidSignature = errors.New("signature does not match event payload and secret")

// AlertHandler is satisfied by *policy.Engine.
type AlertHandler interface {
	Handle(ctx context.Context, ev models.AlertEvent) (models.Decision, error)
}

// Dispatcher checks the delivery signature and routes recognized alert events
// to the policy engine. Everything else is logged and dropped.
type Dispatcher struct {
	secret  []byte
	handler AlertHandler
	logger  *slog.Logger
}

func NewDispatcher(secret string, handler AlertHandler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		secret:  []byte(secret),
		handler: handler,
		logger:  logger,
	}
}

func (d *Dispatcher) VerifyAndReceive(ctx context.Context, del Delivery) error {
	if len(d.secret) == 0 {
		return fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}
	if err := github.ValidateSignature(del.Signature, del.Payload, d.secret); err != nil {
		return ErrInvalidSignature
	}

	log := d.logger.With("delivery_id", del.ID)
	log.Info("Received event: " + events.Describe(del.Event, del.Payload))

	ev, err := events.Parse(del.ID, del.Event, del.Payload)
	if err != nil {
		return err
	}
	if ev == nil {
		log.Debug("event has no handler, ignoring", "event", del.Event)
		return nil
	}

	_, err = d.handler.Handle(ctx, ev)
	return err
}
