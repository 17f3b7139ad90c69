package models

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		label    string
		fallback Severity
		want     Severity
	}{
		{"HIGH", SeverityAll, SeverityHigh},
		{"high", SeverityAll, SeverityHigh},
		{"HiGh", SeverityAll, SeverityHigh},
		{"critical", SeverityAll, SeverityCritical},
		{"medium", SeverityAll, SeverityMedium},
		{"low", SeverityAll, SeverityLow},
		{"note", SeverityAll, SeverityNote},
		{"warning", SeverityAll, SeverityWarning},
		{"error", SeverityAll, SeverityError},
		{"none", SeverityAll, SeverityNone},
		{"unknown", SeverityAll, SeverityUnknown},
		{"all", SeverityHigh, SeverityAll},
		{"", SeverityHigh, SeverityAll},
		{"dog", SeverityAll, SeverityAll},
		{"dog", SeverityUnknown, SeverityUnknown},
		{" high", SeverityLow, SeverityLow},
		{"moderate", SeverityMedium, SeverityMedium},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.label, tt.fallback); got != tt.want {
			t.Errorf("ParseSeverity(%q, %s) = %s, want %s", tt.label, tt.fallback, got, tt.want)
		}
	}
}

func TestParseAlertSeverity(t *testing.T) {
	high := "high"
	empty := ""
	junk := "severe"

	if got := ParseAlertSeverity(&high); got != SeverityHigh {
		t.Errorf("expected HIGH, got %s", got)
	}
	if got := ParseAlertSeverity(nil); got != SeverityUnknown {
		t.Errorf("expected UNKNOWN for missing severity, got %s", got)
	}
	if got := ParseAlertSeverity(&empty); got != SeverityUnknown {
		t.Errorf("expected UNKNOWN for empty severity, got %s", got)
	}
	if got := ParseAlertSeverity(&junk); got != SeverityUnknown {
		t.Errorf("expected UNKNOWN for unrecognized severity, got %s", got)
	}
}

func TestSeverity_Ordering(t *testing.T) {
	ordered := []Severity{
		SeverityAll, SeverityNote, SeverityWarning, SeverityError, SeverityLow,
		SeverityMedium, SeverityHigh, SeverityCritical, SeverityUnknown, SeverityNone,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestSeverity_StringAndText(t *testing.T) {
	if SeverityCritical.String() != "CRITICAL" {
		t.Errorf("expected CRITICAL, got %s", SeverityCritical.String())
	}
	if Severity(7).String() != "Severity(7)" {
		t.Errorf("unexpected name for unnamed severity: %s", Severity(7).String())
	}

	text, err := SeverityMedium.MarshalText()
	if err != nil || string(text) != "MEDIUM" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
}

func TestMaxSeverity(t *testing.T) {
	if got := MaxSeverity(SeverityLow, SeverityHigh); got != SeverityHigh {
		t.Errorf("expected HIGH, got %s", got)
	}
	if got := MaxSeverity(SeverityUnknown, SeverityCritical); got != SeverityUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}
