package responses

import (
	"time"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

// ComplianceStatus enum
type ComplianceStatus string

const (
	StatusNotAnswered   ComplianceStatus = "Not Answered"
	StatusYes           ComplianceStatus = "Yes"
	StatusPartial       ComplianceStatus = "Partial"
	StatusNo            ComplianceStatus = "No"
	StatusNotApplicable ComplianceStatus = "Not Applicable"
)

// Terminal reports whether the auditor committed to a verdict. "Not Answered"
// is the placeholder state and never terminal.
func (s ComplianceStatus) Terminal() bool {
	switch s {
	case StatusYes, StatusPartial, StatusNo, StatusNotApplicable:
		return true
	}
	return false
}

// Valid reports whether s is one of the five known statuses.
func (s ComplianceStatus) Valid() bool {
	return s == StatusNotAnswered || s.Terminal()
}

// QuestionResponse mirrors one control question. A nil SelectedOption means
// the question has not been answered yet.
type QuestionResponse struct {
	SelectedOption *string `json:"selected_option"`
	OptionText     *string `json:"option_text"`
}

// Response is the recorded answer state for one control within one audit.
// Exactly one exists per (audit, control) pair, created as a placeholder when
// the audit is created.
type Response struct {
	AuditID           string             `json:"audit_id"`
	ControlID         catalog.ControlID  `json:"control_id"`
	QuestionResponses []QuestionResponse `json:"question_responses"`
	ComplianceStatus  ComplianceStatus   `json:"compliance_status"`
	Justification     string             `json:"justification_text"`
	MaturityLevel     string             `json:"maturity_level_selected"`
	EvidencePath      string             `json:"evidence_path,omitempty"`
	EvidenceFilename  string             `json:"evidence_filename,omitempty"`
	AIRecommendation  string             `json:"ai_recommendation,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Placeholder builds the initial not-yet-answered response for a control:
// status "Not Answered" and one nil entry per control question.
func Placeholder(auditID string, c *catalog.Control) *Response {
	qrs := make([]QuestionResponse, len(c.Questions))
	return &Response{
		AuditID:           auditID,
		ControlID:         c.ID,
		QuestionResponses: qrs,
		ComplianceStatus:  StatusNotAnswered,
	}
}
