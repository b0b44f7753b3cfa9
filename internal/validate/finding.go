// Package validate checks classified output and cost documents against
// control totals and arithmetic identities. Checks never fail hard: every
// inconsistency becomes a Finding and all checks always run.
package validate

import "strings"

const (
	KindContractMismatch Kind = "contract_mismatch"
	KindLineArithmetic   Kind = "line_arithmetic"
	KindDurationMismatch Kind = "duration_mismatch"
	KindPeriodTotal      Kind = "period_total_mismatch"
	KindItemInvariant    Kind = "item_invariant"
)

type Kind string

// Finding is one inconsistency. Expected and Actual are set when the finding
// compares two numbers.
type Finding struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Expected *int64 `json:"expected,omitempty"`
	Actual   *int64 `json:"actual,omitempty"`
}

func (f Finding) String() string {
	return f.Message
}

// Report is the outcome of a validation run.
type Report struct {
	Valid    bool      `json:"is_valid"`
	Count    int       `json:"error_count"`
	Findings []Finding `json:"errors"`
}

// NewReport builds a report; it passes iff there are no findings.
func NewReport(findings ...[]Finding) Report {
	all := []Finding{}
	for _, f := range findings {
		all = append(all, f...)
	}
	return Report{Valid: len(all) == 0, Count: len(all), Findings: all}
}

// Messages returns the finding messages in order.
func (r Report) Messages() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Message
	}
	return out
}

func (r Report) String() string {
	return strings.Join(r.Messages(), "\n")
}

func numbers(expected, actual int64) (*int64, *int64) {
	return &expected, &actual
}
