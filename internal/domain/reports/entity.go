package reports

import (
	"time"

	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// QuestionAnswer is one questionnaire line of a control entry.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ControlEntry is one control section of the report, in catalog order.
type ControlEntry struct {
	Code             string                     `json:"code"`
	Objective        string                     `json:"objective"`
	Framework        string                     `json:"framework"`
	Status           responses.ComplianceStatus `json:"compliance_status"`
	MaturityLevel    string                     `json:"maturity_level"`
	Justification    string                     `json:"justification"`
	EvidenceFilename string                     `json:"evidence_filename"`
	AIRecommendation string                     `json:"ai_recommendation"`
	Answers          []QuestionAnswer           `json:"answers"`
}

// Report is the fully assembled structure handed to a renderer.
type Report struct {
	AuditName         string                             `json:"audit_name"`
	ClientName        string                             `json:"client_name"`
	AuditorName       string                             `json:"auditor_name"`
	DomainType        string                             `json:"domain_type"`
	OverallScore      int                                `json:"overall_score"`
	OverallStatus     audits.Status                      `json:"overall_status"`
	TotalControls     int                                `json:"total_controls"`
	CompletedControls int                                `json:"completed_controls"`
	GeneratedAt       time.Time                          `json:"generated_at"`
	Entries           []ControlEntry                     `json:"entries"`
	StatusTally       map[responses.ComplianceStatus]int `json:"status_tally"`
}
