// Package doctor diagnoses the files agentsync manages: provider configs,
// skill links, and backups left by interrupted batches.
package doctor

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a potential issue that doesn't prevent operation.
	SeverityWarning

	// SeverityError indicates a problem that prevents proper operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Issues lists the individual problems found, if any.
	Issues []Issue `json:"issues,omitempty"`

	// FixHint provides guidance on how to resolve the issues.
	FixHint string `json:"fix_hint,omitempty"`
}

// Issue is one problem found by a check.
type Issue struct {
	Path       string   `json:"path"`
	ProviderID string   `json:"provider,omitempty"`
	Problem    string   `json:"problem"`
	Severity   Severity `json:"severity"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// worst returns the highest issue severity, or SeverityPass.
func worst(issues []Issue) Severity {
	s := SeverityPass
	for _, i := range issues {
		s = max(s, i.Severity)
	}
	return s
}
