// Package policy decides whether closing a security alert was authorized and
// reopens the alert when it was not.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	"github.com/mr1hm/go-security-alert-watcher/internal/membership"
	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

var ErrUnsupportedEvent = errors.New("unsupported alert event")

// AlertReopener sets an alert back to the open state.
type AlertReopener interface {
	Reopen(ctx context.Context, ref models.AlertRef) error
}

// Clients are the GitHub API handles for one installation.
type Clients struct {
	Teams  membership.TeamsAPI
	Alerts AlertReopener
}

type ClientProvider interface {
	ForInstallation(ctx context.Context, installationID int64) (*Clients, error)
}

type Recorder interface {
	membership.Recorder
	DecisionMade(t models.AlertType, d models.Decision)
	ReopenFailed(t models.AlertType)
}

// Evaluation explains how a decision was reached.
type Evaluation struct {
	Severity      models.Severity
	Threshold     models.Severity
	Team          string
	Gated         bool // severity below threshold, membership not queried
	Membership    models.MembershipOutcome
	PatternChange bool
	Decision      models.Decision
}

type Engine struct {
	clients  ClientProvider
	resolve  func() config.Approval
	logger   *slog.Logger
	recorder Recorder
	dryRun   bool
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithResolver replaces the environment-backed approval configuration.
func WithResolver(resolve func() config.Approval) Option {
	return func(e *Engine) { e.resolve = resolve }
}

// WithDryRun makes the engine log reverts instead of issuing them.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

func NewEngine(clients ClientProvider, opts ...Option) *Engine {
	e := &Engine{
		clients: clients,
		resolve: func() config.Approval { return config.ResolveApproval(nil) },
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle evaluates one alert-closing event and reopens the alert when the
// close was not authorized. Only the reopen call can fail.
func (e *Engine) Handle(ctx context.Context, ev models.AlertEvent) (models.Decision, error) {
	meta := ev.Meta()
	ref := meta.Ref
	log := e.logger.With(
		"delivery_id", meta.DeliveryID,
		"alert_type", ref.Type,
		"org", ref.Owner,
		"repo", ref.Repo,
		"alert_number", ref.Number,
		"user", meta.Actor,
	)
	log.Info("alert close event received")

	sess := &session{provider: e.clients, installationID: meta.InstallationID}
	oracle := membership.NewOracle(sess, log, e.recorder)

	eval, err := e.Decide(ctx, ev, e.resolve(), oracle)
	if err != nil {
		return models.DecisionRevert, err
	}
	if e.recorder != nil {
		e.recorder.DecisionMade(ref.Type, eval.Decision)
	}

	log = log.With("severity", eval.Severity, "threshold", eval.Threshold, "team", eval.Team)
	switch {
	case eval.Gated:
		log.Info("alert close request allowed, severity is below the minimum")
		return models.DecisionApprove, nil
	case eval.Decision == models.DecisionApprove:
		if eval.PatternChange {
			log.Info("alert close request approved, closed by custom pattern change")
		} else {
			log.Info("alert close request approved")
		}
		return models.DecisionApprove, nil
	}

	log.Info("alert close request not approved, reopening the alert", "membership", eval.Membership)
	if e.dryRun {
		log.Warn("dry run, alert left closed")
		return models.DecisionRevert, nil
	}

	alerts, err := sess.alerts(ctx)
	if err == nil {
		err = alerts.Reopen(ctx, ref)
	}
	if err != nil {
		if e.recorder != nil {
			e.recorder.ReopenFailed(ref.Type)
		}
		log.Error("failed to reopen alert", "error", err)
		return models.DecisionRevert, fmt.Errorf("reopen %s: %w", ref, err)
	}
	return models.DecisionRevert, nil
}

// Decide computes the decision for ev under cfg. The oracle is consulted only
// when the severity gate does not already approve.
func (e *Engine) Decide(ctx context.Context, ev models.AlertEvent, cfg config.Approval, oracle *membership.Oracle) (Evaluation, error) {
	meta := ev.Meta()
	eval := Evaluation{
		Threshold: cfg.MinSeverity(meta.Ref.Type),
		Team:      cfg.Team(meta.Ref.Type),
		Decision:  models.DecisionRevert,
	}

	switch ev := ev.(type) {
	case *models.CodeScanningDismissal:
		eval.Severity = ev.Severity()
	case *models.DependabotDismissal:
		eval.Severity = ev.Severity()
	case *models.SecretScanningResolution:
		eval.Severity = ev.Severity()
		eval.PatternChange = ev.ClosedByPatternChange()
	default:
		return eval, fmt.Errorf("%w: %T", ErrUnsupportedEvent, ev)
	}

	if eval.Severity < eval.Threshold {
		eval.Gated = true
		eval.Decision = models.DecisionApprove
		return eval, nil
	}

	eval.Membership = oracle.Check(ctx, meta.Ref.Owner, meta.Actor, eval.Team)
	if eval.Membership.Approved() || eval.PatternChange {
		eval.Decision = models.DecisionApprove
	}
	return eval, nil
}

// session acquires installation clients on first use, so events approved by
// the severity gate never authenticate.
type session struct {
	provider       ClientProvider
	installationID int64
	clients        *Clients
	err            error
	done           bool
}

func (s *session) get(ctx context.Context) (*Clients, error) {
	if !s.done {
		s.done = true
		if s.provider == nil {
			s.err = errors.New("no GitHub client provider configured")
		} else {
			s.clients, s.err = s.provider.ForInstallation(ctx, s.installationID)
		}
	}
	return s.clients, s.err
}

func (s *session) GetTeamMembershipBySlug(ctx context.Context, org, slug, user string) (*github.Membership, *github.Response, error) {
	c, err := s.get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire installation client: %w", err)
	}
	if c.Teams == nil {
		return nil, nil, errors.New("installation client has no teams service")
	}
	return c.Teams.GetTeamMembershipBySlug(ctx, org, slug, user)
}

func (s *session) alerts(ctx context.Context) (AlertReopener, error) {
	c, err := s.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire installation client: %w", err)
	}
	if c.Alerts == nil {
		return nil, errors.New("installation client cannot update alerts")
	}
	return c.Alerts, nil
}
