package harness

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of one scenario in a run.
//
// NotRun -> Running -> Passed | Failed. There are no retries.
type Status int

const (
	StatusNotRun Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotRun:
		return "not_run"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of one scenario.
type Outcome struct {
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
	Status Status `json:"status"`

	// Count is the number of rows returned. Zero when the query never ran.
	Count int `json:"count"`

	// Digest fingerprints the returned rows in order (ir.ResultDigest).
	Digest string `json:"digest,omitempty"`

	// Identities are the returned actor identities, in result order.
	Identities []string `json:"-"`

	// Errors holds *QueryError and *AssertionError values.
	Errors []error `json:"-"`

	// Warnings come from queryir.Validate.
	Warnings []string `json:"warnings,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Passed reports whether the scenario passed.
func (o *Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// ErrorMessages returns the error strings.
func (o *Outcome) ErrorMessages() []string {
	msgs := make([]string, len(o.Errors))
	for i, err := range o.Errors {
		msgs[i] = err.Error()
	}
	return msgs
}

func (o *Outcome) addError(err error) {
	o.Errors = append(o.Errors, err)
}

// finish moves a running outcome to its final status.
func (o *Outcome) finish() {
	if len(o.Errors) > 0 {
		o.Status = StatusFailed
	} else {
		o.Status = StatusPassed
	}
}

// Report is the result of a batch run.
type Report struct {
	RunID    string     `json:"run_id"`
	Outcomes []*Outcome `json:"outcomes"`
	Passed   int        `json:"passed"`
	Failed   int        `json:"failed"`
	Total    int        `json:"total"`
}

// OK reports whether every scenario ran and passed.
func (r *Report) OK() bool {
	return r.Total > 0 && r.Passed == r.Total
}

// Failures returns the failed outcomes in run order.
func (r *Report) Failures() []*Outcome {
	var out []*Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome for the named scenario.
func (r *Report) Outcome(name string) (*Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// tally recounts Passed and Failed from the outcomes.
func (r *Report) tally() {
	r.Passed, r.Failed = 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPassed:
			r.Passed++
		case StatusFailed:
			r.Failed++
		}
	}
}
