package docgraph

import "strings"

// Status is the outcome discriminator reported by every pipeline stage and
// surfaced to users in responses.
type Status string

// Stage statuses.
const (
	StatusSuccess  Status = "success"
	StatusDegraded Status = "partial"
	StatusFailed   Status = "error"
)

// Outcome describes how a stage finished. Degraded and failed outcomes carry
// the reasons that explain the result.
type Outcome struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

// Succeeded returns a successful outcome.
func Succeeded() Outcome {
	return Outcome{Status: StatusSuccess}
}

// Degraded returns an outcome for a stage that produced a usable but
// incomplete value.
func Degraded(reason string) Outcome {
	return Outcome{Status: StatusDegraded, Reasons: []string{reason}}
}

// Failed returns an outcome for a stage that could not produce a usable value.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reasons: []string{reason}}
}

// OK reports whether the stage finished without degradation.
func (o Outcome) OK() bool {
	return o.Status == "" || o.Status == StatusSuccess
}

// Reason joins the outcome reasons for display.
func (o Outcome) Reason() string {
	return strings.Join(o.Reasons, "; ")
}

// Merge combines two outcomes, keeping the worse status and all reasons.
func (o Outcome) Merge(other Outcome) Outcome {
	merged := Outcome{Status: worse(o.Status, other.Status)}
	merged.Reasons = append(merged.Reasons, o.Reasons...)
	merged.Reasons = append(merged.Reasons, other.Reasons...)
	return merged
}

func worse(a, b Status) Status {
	if severity(b) > severity(a) {
		return b
	}
	if a == "" {
		return StatusSuccess
	}
	return a
}

func severity(s Status) int {
	switch s {
	case StatusFailed:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}
