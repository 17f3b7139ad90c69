package models

import "fmt"

type AlertType string

const (
	AlertTypeCodeScanning   AlertType = "code_scanning"
	AlertTypeDependabot     AlertType = "dependabot"
	AlertTypeSecretScanning AlertType = "secret_scanning"
)

// AlertRef identifies one alert in one repository.
type AlertRef struct {
	Type   AlertType
	Owner  string
	Repo   string
	Number int64
}

func (r AlertRef) String() string {
	return fmt.Sprintf("%s %s/%s#%d", r.Type, r.Owner, r.Repo, r.Number)
}

// AlertMeta holds the fields shared by every alert-closing event.
type AlertMeta struct {
	Ref            AlertRef
	Actor          string // login of the user who closed the alert, may be empty
	InstallationID int64
	DeliveryID     string
}

// AlertEvent is the closed set of alert-closing events the policy engine
// evaluates. Only types in this package implement it.
type AlertEvent interface {
	Meta() AlertMeta
	alertEvent()
}

// CodeScanningDismissal is code_scanning_alert.closed_by_user.
type CodeScanningDismissal struct {
	AlertMeta
	SecuritySeverity *string // rule.security_severity_level
	RuleSeverity     *string // rule.severity (note, warning, error), informational only
}

// DependabotDismissal is dependabot_alert.dismissed.
type DependabotDismissal struct {
	AlertMeta
	AdvisorySeverity      *string
	VulnerabilitySeverity *string
}

// SecretScanningResolution is secret_scanning_alert.resolved.
type SecretScanningResolution struct {
	AlertMeta
	Resolution string
}

func (e *CodeScanningDismissal) Meta() AlertMeta    { return e.AlertMeta }
func (e *DependabotDismissal) Meta() AlertMeta      { return e.AlertMeta }
func (e *SecretScanningResolution) Meta() AlertMeta { return e.AlertMeta }

func (*CodeScanningDismissal) alertEvent()    {}
func (*DependabotDismissal) alertEvent()      {}
func (*SecretScanningResolution) alertEvent() {}

// Severity is the rule's security severity. Rules without one (plain
// note/warning/error findings) are UNKNOWN so they are never gated.
func (e *CodeScanningDismissal) Severity() Severity {
	return ParseAlertSeverity(e.SecuritySeverity)
}

// Severity is the higher of the advisory and vulnerability severities.
func (e *DependabotDismissal) Severity() Severity {
	return MaxSeverity(ParseAlertSeverity(e.AdvisorySeverity), ParseAlertSeverity(e.VulnerabilitySeverity))
}

// Severity is always unknown: secret alerts carry no severity.
func (e *SecretScanningResolution) Severity() Severity {
	return SeverityUnknown
}

// PatternResolutions are resolutions caused by an admin editing or deleting a
// custom pattern rather than a person closing the alert.
var PatternResolutions = map[string]bool{
	"pattern_edited":  true,
	"pattern_deleted": true,
}

// ClosedByPatternChange reports whether the resolution came from a custom
// pattern change.
func (e *SecretScanningResolution) ClosedByPatternChange() bool {
	return PatternResolutions[e.Resolution]
}

type Decision int

const (
	DecisionRevert Decision = iota
	DecisionApprove
)

func (d Decision) String() string {
	if d == DecisionApprove {
		return "approve"
	}
	return "revert"
}

// MembershipOutcome keeps "confirmed not a member" apart from "could not tell".
type MembershipOutcome int

const (
	MembershipIndeterminate MembershipOutcome = iota
	MembershipApproved
	MembershipNotApproved
)

func (o MembershipOutcome) String() string {
	switch o {
	case MembershipApproved:
		return "approved"
	case MembershipNotApproved:
		return "not_approved"
	default:
		return "indeterminate"
	}
}

// Approved is true only for a confirmed approving role.
func (o MembershipOutcome) Approved() bool {
	return o == MembershipApproved
}
