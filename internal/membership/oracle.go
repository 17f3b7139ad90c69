// Package membership answers whether a user may approve alert dismissals on
// behalf of a team.
package membership

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

// TeamsAPI is the part of the GitHub Teams service the oracle needs.
// *github.TeamsService satisfies it.
type TeamsAPI interface {
	GetTeamMembershipBySlug(ctx context.Context, org, slug, user string) (*github.Membership, *github.Response, error)
}

// Recorder receives every outcome. *metrics.Metrics satisfies it.
type Recorder interface {
	MembershipChecked(outcome models.MembershipOutcome)
}

type Oracle struct {
	teams    TeamsAPI
	logger   *slog.Logger
	recorder Recorder
}

func NewOracle(teams TeamsAPI, logger *slog.Logger, recorder Recorder) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{
		teams:    teams,
		logger:   logger,
		recorder: recorder,
	}
}

// Check looks up user in team under org. Any role returned by GitHub counts as
// approval: org owners are always reported as "maintainer", explicit team
// members as "member". A 404 means the user is not in the team; every other
// failure is indeterminate.
func (o *Oracle) Check(ctx context.Context, org, user, team string) models.MembershipOutcome {
	outcome := o.check(ctx, org, user, team)
	if o != nil && o.recorder != nil {
		o.recorder.MembershipChecked(outcome)
	}
	return outcome
}

func (o *Oracle) check(ctx context.Context, org, user, team string) models.MembershipOutcome {
	if o == nil || o.teams == nil || org == "" || user == "" {
		return models.MembershipNotApproved
	}

	log := o.logger.With("org", org, "user", user, "team", team)

	m, resp, err := o.teams.GetTeamMembershipBySlug(ctx, org, team, user)
	if err != nil {
		if isNotFound(resp, err) {
			log.Info("user is not part of the approving team")
			return models.MembershipNotApproved
		}
		log.Error("unexpected error checking team membership", "error", err)
		return models.MembershipIndeterminate
	}
	if m == nil {
		log.Error("team membership lookup returned no membership")
		return models.MembershipIndeterminate
	}

	log.Info("user holds a role in the approving team", "role", m.GetRole(), "state", m.GetState())
	return models.MembershipApproved
}

// IsApprover collapses Check to a boolean. Only a confirmed role is true.
func (o *Oracle) IsApprover(ctx context.Context, org, user, team string) bool {
	return o.Check(ctx, org, user, team).Approved()
}

func isNotFound(resp *github.Response, err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}
