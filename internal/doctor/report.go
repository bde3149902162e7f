package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Status is the outcome of one check.
type Status int

const (
	StatusPass Status = iota
	// StatusWarn marks something that works but is probably unintended.
	StatusWarn
	// StatusFail marks a problem that makes schema builds fail.
	StatusFail
)

var statusNames = [...]struct{ name, symbol string }{
	StatusPass: {"pass", "✓"},
	StatusWarn: {"warn", "⚠"},
	StatusFail: {"fail", "✗"},
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s].name
}

// Symbol is the marker printed in front of a check.
func (s Status) Symbol() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "?"
	}
	return statusNames[s].symbol
}

// CheckResult is one line of a report.
type CheckResult struct {
	// Category groups checks when printing: "catalog", "relations" or "coverage".
	Category string
	// Name identifies the subject: a type, a constraint or a check id.
	Name    string
	Status  Status
	Message string
	// Details is printed, one indented line per line, in verbose mode.
	Details string
	// FixHint is printed under warnings and failures.
	FixHint string
	// Err is set on failures that came from a build error.
	Err error
}

// Report collects check results in the order they ran.
type Report struct {
	Checks []CheckResult

	Passed   int
	Warnings int
	Errors   int
}

// AddCheck appends check and counts it.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// HasErrors reports whether any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Err combines the errors of every failed check, or returns nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, check := range r.Checks {
		if check.Status == StatusFail && check.Err != nil {
			result = multierror.Append(result, check.Err)
		}
	}
	return result.ErrorOrNil()
}

// Print writes the checks grouped by category, categories in the order they
// first appear, followed by a summary line.
func (r *Report) Print(w io.Writer, verbose bool) {
	var order []string
	byCategory := map[string][]CheckResult{}
	for _, check := range r.Checks {
		if _, seen := byCategory[check.Category]; !seen {
			order = append(order, check.Category)
		}
		byCategory[check.Category] = append(byCategory[check.Category], check)
	}

	indent := func(s string) {
		for _, line := range strings.Split(s, "\n") {
			_, _ = fmt.Fprintf(w, "      %s\n", line)
		}
	}
	for _, category := range order {
		_, _ = fmt.Fprintf(w, "\n%s\n", category)
		for _, check := range byCategory[category] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				indent(check.Details)
			}
			if check.Status != StatusPass && check.FixHint != "" {
				indent("Fix: " + check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n", r.Passed, r.Warnings, r.Errors)
}
