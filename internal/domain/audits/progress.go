package audits

import (
	"math"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// Summary is the derived completion state of one audit. Reconciliation
// recomputes it from scratch on every run and compares it against the
// persisted fields, so repeated runs on unchanged data are no-ops.
type Summary struct {
	Score             int    `json:"overall_score"`
	Status            Status `json:"overall_status"`
	CompletedControls int    `json:"completed_controls_in_audit"`
}

// ControlComplete reports whether a control counts as done: every question
// has a selection AND the auditor committed to a terminal verdict. "Not
// Answered" never completes a control even if all questions happen to carry
// selections. A control with zero questions can never complete.
func ControlComplete(c *catalog.Control, r *responses.Response) bool {
	if c == nil || len(c.Questions) == 0 {
		return false
	}
	if r == nil || !r.ComplianceStatus.Terminal() {
		return false
	}
	answered := 0
	for _, qr := range r.QuestionResponses {
		if qr.SelectedOption != nil {
			answered++
		}
	}
	return answered == len(c.Questions)
}

// ComputeSummary derives the audit summary from a catalog snapshot and the
// full response snapshot. totalExpected is the audit's fixed control count
// from creation time. Responses referencing controls absent from the catalog
// snapshot are skipped, not errors.
func ComputeSummary(controls []*catalog.Control, byControl map[catalog.ControlID]*responses.Response, totalExpected int) Summary {
	completed := 0
	for _, c := range controls {
		if ControlComplete(c, byControl[c.ID]) {
			completed++
		}
	}

	score := 0
	if totalExpected > 0 {
		// round half away from zero: 1/3 -> 33, 2/3 -> 67
		score = int(math.Round(100 * float64(completed) / float64(totalExpected)))
	}

	return Summary{
		Score:             score,
		Status:            StatusForScore(score),
		CompletedControls: completed,
	}
}

// StatusForScore maps a percentage to the audit status.
func StatusForScore(score int) Status {
	switch {
	case score >= 100:
		return StatusCompleted
	case score > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Reconcile compares the persisted summary against a freshly computed one and
// returns the summary to keep plus whether a write is needed. Pure function;
// the caller performs the single atomic write when changed is true.
func Reconcile(current, computed Summary) (next Summary, changed bool) {
	if current == computed {
		return current, false
	}
	return computed, true
}
