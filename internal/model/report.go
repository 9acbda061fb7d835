package model

import "time"

// CheckStatus is the outcome of one named heuristic check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFlagged CheckStatus = "flagged"
	CheckSkipped CheckStatus = "skipped" // required field missing
)

// CheckResult records one check's outcome. Penalty is the number of points
// actually deducted (0 unless the check flagged).
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Penalty int         `json:"penalty"`
	Reason  string      `json:"reason"`
}

// Band classifies a score into a trust band.
type Band string

const (
	BandTrusted      Band = "trusted"
	BandQuestionable Band = "questionable"
	BandPredatory    Band = "predatory"
)

// SubjectKind distinguishes what was evaluated.
type SubjectKind string

const (
	KindJournal SubjectKind = "journal"
	KindPaper   SubjectKind = "paper"
)

// ScoreReport is the complete evaluation output. The shape is the contract
// with the presentation layer: score, band, and reasons render as-is.
type ScoreReport struct {
	Subject    string      `json:"subject"`    // journal or paper title
	Identifier string      `json:"identifier"` // ISSN or DOI when known
	Kind       SubjectKind `json:"kind"`

	Score  int           `json:"score"` // always within [0,100]
	Band   Band          `json:"band"`
	Checks []CheckResult `json:"checks"`

	// Reasons lists the flagged check reasons in evaluation order.
	Reasons []string `json:"reasons"`

	// ReducedConfidence is set when at least half of the checks were
	// skipped for lack of data.
	ReducedConfidence bool `json:"reduced_confidence"`

	// Hijacked marks a registry hit that short-circuited scoring.
	Hijacked bool `json:"hijacked,omitempty"`

	// Rationale is the optional LLM commentary. Advisory only: it is
	// generated after scoring and never alters the numeric result.
	Rationale *Rationale `json:"rationale,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Rationale is free-text commentary from an LLM provider.
type Rationale struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Text       string `json:"text"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// SkippedChecks counts checks recorded as skipped.
func (r *ScoreReport) SkippedChecks() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == CheckSkipped {
			n++
		}
	}
	return n
}
