package config

import (
	"os"
	"strings"

	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

// DefaultApprovingTeam is used when no approver team is configured at all.
const DefaultApprovingTeam = "scan-managers"

// Approval is the per-event approval configuration.
type Approval struct {
	DefaultTeam string `yaml:"default_team"`

	CodeScanningTeam        string          `yaml:"code_scanning_team"`
	CodeScanningMinSeverity models.Severity `yaml:"code_scanning_min_severity"`

	DependabotTeam        string          `yaml:"dependabot_team"`
	DependabotMinSeverity models.Severity `yaml:"dependabot_min_severity"`

	SecretScanningTeam        string          `yaml:"secret_scanning_team"`
	SecretScanningMinSeverity models.Severity `yaml:"secret_scanning_min_severity"`
}

// Team returns the approver team for an alert type.
func (a Approval) Team(t models.AlertType) string {
	switch t {
	case models.AlertTypeCodeScanning:
		return a.CodeScanningTeam
	case models.AlertTypeDependabot:
		return a.DependabotTeam
	case models.AlertTypeSecretScanning:
		return a.SecretScanningTeam
	}
	return a.DefaultTeam
}

// MinSeverity returns the threshold below which closing an alert of type t
// needs no approval.
func (a Approval) MinSeverity(t models.AlertType) models.Severity {
	switch t {
	case models.AlertTypeCodeScanning:
		return a.CodeScanningMinSeverity
	case models.AlertTypeDependabot:
		return a.DependabotMinSeverity
	case models.AlertTypeSecretScanning:
		return a.SecretScanningMinSeverity
	}
	return models.SeverityAll
}

// ResolveApproval builds the approval settings from lookup. It is re-run for
// every event so environment changes apply without a restart.
func ResolveApproval(lookup func(string) string) Approval {
	if lookup == nil {
		PreparePrivateKey()
		lookup = os.Getenv
	}

	defaultTeam := firstNonEmpty(lookup("SECURITY_ALERT_CLOSE_TEAM"), DefaultApprovingTeam)

	return Approval{
		DefaultTeam: defaultTeam,

		CodeScanningTeam:        firstNonEmpty(lookup("CODE_SCANNING_APPROVER_TEAM"), defaultTeam),
		CodeScanningMinSeverity: models.ParseSeverity(lookup("CODE_SCANNING_MIN_SEVERITY"), models.SeverityAll),

		DependabotTeam:        firstNonEmpty(lookup("DEPENDABOT_APPROVER_TEAM"), defaultTeam),
		DependabotMinSeverity: models.ParseSeverity(lookup("DEPENDABOT_MIN_SEVERITY"), models.SeverityAll),

		SecretScanningTeam:        firstNonEmpty(lookup("SECRET_SCANNING_APPROVER_TEAM"), defaultTeam),
		SecretScanningMinSeverity: models.ParseSeverity(lookup("SECRET_SCANNING_MIN_SEVERITY"), models.SeverityAll),
	}
}

// NormalizePrivateKey turns escaped newlines into real ones and drops quotes
// left behind by .env and CI secret stores.
func NormalizePrivateKey(key string) string {
	key = strings.ReplaceAll(key, `\n`, "\n")
	return strings.ReplaceAll(key, `"`, "")
}

// PreparePrivateKey normalizes PRIVATE_KEY in place. It must run before any
// GitHub client is built.
func PreparePrivateKey() {
	if key, ok := os.LookupEnv("PRIVATE_KEY"); ok {
		os.Setenv("PRIVATE_KEY", NormalizePrivateKey(key))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
