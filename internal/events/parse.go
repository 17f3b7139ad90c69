// Package events turns verified webhook deliveries into the alert events the
// policy engine understands.
package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/go-github/v66/github"

	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

var ErrMalformedPayload = errors.New("malformed webhook payload")

const (
	EventCodeScanningAlert   = "code_scanning_alert"
	EventDependabotAlert     = "dependabot_alert"
	EventSecretScanningAlert = "secret_scanning_alert"
)

// Route is a recognized (event, action) pair.
type Route struct {
	Event  string
	Action string
}

func (r Route) String() string {
	return r.Event + "." + r.Action
}

var (
	RouteCodeScanningClosedByUser = Route{EventCodeScanningAlert, "closed_by_user"}
	RouteDependabotDismissed      = Route{EventDependabotAlert, "dismissed"}
	RouteSecretScanningResolved   = Route{EventSecretScanningAlert, "resolved"}
)

// Routes lists every pair that reaches the policy engine.
var Routes = []Route{
	RouteCodeScanningClosedByUser,
	RouteDependabotDismissed,
	RouteSecretScanningResolved,
}

// Parse decodes a delivery. It returns a nil event for deliveries that are
// not one of Routes.
func Parse(deliveryID, name string, payload []byte) (models.AlertEvent, error) {
	switch name {
	case EventCodeScanningAlert, EventDependabotAlert, EventSecretScanningAlert:
	default:
		return nil, nil
	}

	raw, err := github.ParseWebHook(name, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, name, err)
	}

	switch ev := raw.(type) {
	case *github.CodeScanningAlertEvent:
		if ev.GetAction() != RouteCodeScanningClosedByUser.Action {
			return nil, nil
		}
		return codeScanning(deliveryID, ev), nil
	case *github.DependabotAlertEvent:
		if ev.GetAction() != RouteDependabotDismissed.Action {
			return nil, nil
		}
		return dependabot(deliveryID, ev), nil
	case *github.SecretScanningAlertEvent:
		if ev.GetAction() != RouteSecretScanningResolved.Action {
			return nil, nil
		}
		return secretScanning(deliveryID, ev), nil
	}
	return nil, fmt.Errorf("%w: unexpected payload type %T for %s", ErrMalformedPayload, raw, name)
}

// Describe returns "<event>.<action>" for logging any delivery.
func Describe(name string, payload []byte) string {
	var body struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Action == "" {
		return name
	}
	return name + "." + body.Action
}

func codeScanning(deliveryID string, ev *github.CodeScanningAlertEvent) *models.CodeScanningDismissal {
	alert := ev.GetAlert()
	rule := alert.GetRule()
	return &models.CodeScanningDismissal{
		AlertMeta: models.AlertMeta{
			Ref:            ref(models.AlertTypeCodeScanning, ev.GetRepo(), ev.GetOrg(), alert.GetNumber()),
			Actor:          alert.GetDismissedBy().GetLogin(),
			InstallationID: ev.GetInstallation().GetID(),
			DeliveryID:     deliveryID,
		},
		SecuritySeverity: optional(rule.GetSecuritySeverityLevel()),
		RuleSeverity:     optional(rule.GetSeverity()),
	}
}

func dependabot(deliveryID string, ev *github.DependabotAlertEvent) *models.DependabotDismissal {
	alert := ev.GetAlert()
	return &models.DependabotDismissal{
		AlertMeta: models.AlertMeta{
			Ref:            ref(models.AlertTypeDependabot, ev.GetRepo(), ev.GetOrganization(), alert.GetNumber()),
			Actor:          alert.GetDismissedBy().GetLogin(),
			InstallationID: ev.GetInstallation().GetID(),
			DeliveryID:     deliveryID,
		},
		AdvisorySeverity:      optional(alert.GetSecurityAdvisory().GetSeverity()),
		VulnerabilitySeverity: optional(alert.GetSecurityVulnerability().GetSeverity()),
	}
}

func secretScanning(deliveryID string, ev *github.SecretScanningAlertEvent) *models.SecretScanningResolution {
	alert := ev.GetAlert()
	return &models.SecretScanningResolution{
		AlertMeta: models.AlertMeta{
			Ref:            ref(models.AlertTypeSecretScanning, ev.GetRepo(), ev.GetOrganization(), alert.GetNumber()),
			Actor:          alert.GetResolvedBy().GetLogin(),
			InstallationID: ev.GetInstallation().GetID(),
			DeliveryID:     deliveryID,
		},
		Resolution: alert.GetResolution(),
	}
}

// ref prefers the repository owner and falls back to the organization.
func ref(t models.AlertType, repo *github.Repository, org *github.Organization, number int) models.AlertRef {
	owner := repo.GetOwner().GetLogin()
	if owner == "" {
		owner = org.GetLogin()
	}
	return models.AlertRef{
		Type:   t,
		Owner:  owner,
		Repo:   repo.GetName(),
		Number: int64(number),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
