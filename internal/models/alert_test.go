package models

import "testing"

func ptr(s string) *string { return &s }

func TestCodeScanningDismissal_Severity(t *testing.T) {
	tests := []struct {
		name     string
		security *string
		rule     *string
		want     Severity
	}{
		{"security severity", ptr("medium"), ptr("warning"), SeverityMedium},
		{"rule severity is not a security severity", nil, ptr("note"), SeverityUnknown},
		{"empty security severity", ptr(""), ptr("error"), SeverityUnknown},
		{"both missing", nil, nil, SeverityUnknown},
		{"unparseable", ptr("bad"), nil, SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &CodeScanningDismissal{SecuritySeverity: tt.security, RuleSeverity: tt.rule}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDependabotDismissal_Severity(t *testing.T) {
	tests := []struct {
		name          string
		advisory      *string
		vulnerability *string
		want          Severity
	}{
		{"advisory higher", ptr("critical"), ptr("low"), SeverityCritical},
		{"vulnerability higher", ptr("low"), ptr("high"), SeverityHigh},
		{"equal", ptr("medium"), ptr("MEDIUM"), SeverityMedium},
		{"missing vulnerability is unknown", ptr("low"), nil, SeverityUnknown},
		{"both missing", nil, nil, SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &DependabotDismissal{AdvisorySeverity: tt.advisory, VulnerabilitySeverity: tt.vulnerability}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSecretScanningResolution(t *testing.T) {
	for _, resolution := range []string{"pattern_edited", "pattern_deleted"} {
		ev := &SecretScanningResolution{Resolution: resolution}
		if !ev.ClosedByPatternChange() {
			t.Errorf("expected %s to be a pattern change", resolution)
		}
	}
	for _, resolution := range []string{"false_positive", "wont_fix", "revoked", "used_in_tests", ""} {
		ev := &SecretScanningResolution{Resolution: resolution}
		if ev.ClosedByPatternChange() {
			t.Errorf("expected %q not to be a pattern change", resolution)
		}
	}
	if got := (&SecretScanningResolution{}).Severity(); got != SeverityUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}

func TestAlertEvent_Meta(t *testing.T) {
	meta := AlertMeta{
		Ref:   AlertRef{Type: AlertTypeDependabot, Owner: "org", Repo: "repo", Number: 7},
		Actor: "octocat",
	}
	var ev AlertEvent = &DependabotDismissal{AlertMeta: meta}
	if ev.Meta() != meta {
		t.Errorf("unexpected meta: %+v", ev.Meta())
	}
	if got := meta.Ref.String(); got != "dependabot org/repo#7" {
		t.Errorf("unexpected ref string: %s", got)
	}
}

func TestMembershipOutcome(t *testing.T) {
	if !MembershipApproved.Approved() {
		t.Error("expected approved outcome to approve")
	}
	if MembershipNotApproved.Approved() || MembershipIndeterminate.Approved() {
		t.Error("only a confirmed role may approve")
	}
	var zero MembershipOutcome
	if zero != MembershipIndeterminate {
		t.Error("zero value must be indeterminate")
	}
	var d Decision
	if d != DecisionRevert {
		t.Error("zero decision must be revert")
	}
}
