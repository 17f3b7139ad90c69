package models

import (
	"strconv"
	"strings"
)

// Severity orders alert severities. Code-scanning rule levels sit below the
// advisory levels; UNKNOWN and NONE sit above everything real.
type Severity int

const (
	SeverityAll      Severity = 0
	SeverityNote     Severity = 20
	SeverityWarning  Severity = 40
	SeverityError    Severity = 60
	SeverityLow      Severity = 100
	SeverityMedium   Severity = 200
	SeverityHigh     Severity = 300
	SeverityCritical Severity = 400
	SeverityUnknown  Severity = 900
	// SeverityNone as a threshold means no event ever needs approval.
	SeverityNone Severity = 1000
)

var severityNames = map[Severity]string{
	SeverityAll:      "ALL",
	SeverityNote:     "NOTE",
	SeverityWarning:  "WARNING",
	SeverityError:    "ERROR",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
	SeverityUnknown:  "UNKNOWN",
	SeverityNone:     "NONE",
}

var severityValues = func() map[string]Severity {
	m := make(map[string]Severity, len(severityNames))
	for s, name := range severityNames {
		m[name] = s
	}
	return m
}()

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Severity(" + strconv.Itoa(int(s)) + ")"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity maps a label to a Severity, ignoring case. An empty label is
// read as "ALL"; anything unrecognized returns fallback.
func ParseSeverity(label string, fallback Severity) Severity {
	if label == "" {
		label = "ALL"
	}
	if s, ok := severityValues[strings.ToUpper(label)]; ok {
		return s
	}
	return fallback
}

// ParseAlertSeverity reads a severity reported on an alert. Missing or
// unrecognized values are SeverityUnknown so they never slip under a threshold.
func ParseAlertSeverity(label *string) Severity {
	if label == nil || *label == "" {
		return SeverityUnknown
	}
	return ParseSeverity(*label, SeverityUnknown)
}

func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}
