package audits

import (
	"time"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

// AuditID identifier type
type AuditID string

// Status enum for the audit-level completion state
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Aggregate root: Audit. FrameworksAudited and TotalControls are snapshotted
// at creation and never change afterwards, even if the control catalog does;
// that keeps audits comparable over time. The three summary fields are
// mutated only by reconciliation, always together.
type Audit struct {
	ID                AuditID               `json:"id"`
	TenantID          string                `json:"tenant_id"`
	Name              string                `json:"name"`
	ClientName        string                `json:"client_name"`
	AuditorName       string                `json:"auditor_name,omitempty"`
	DomainType        string                `json:"domain_type"`
	FrameworksAudited []catalog.FrameworkID `json:"frameworks_audited"`
	TotalControls     int                   `json:"total_controls_in_audit"`
	OverallScore      int                   `json:"overall_score"`
	OverallStatus     Status                `json:"overall_status"`
	CompletedControls int                   `json:"completed_controls_in_audit"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Summary returns the currently persisted summary fields as a value object.
func (a *Audit) Summary() Summary {
	return Summary{
		Score:             a.OverallScore,
		Status:            a.OverallStatus,
		CompletedControls: a.CompletedControls,
	}
}

// ApplySummary writes a reconciled summary back onto the aggregate.
func (a *Audit) ApplySummary(s Summary, at time.Time) {
	a.OverallScore = s.Score
	a.OverallStatus = s.Status
	a.CompletedControls = s.CompletedControls
	a.UpdatedAt = at
}
