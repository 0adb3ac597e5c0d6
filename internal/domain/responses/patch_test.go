package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

func testControlWithQuestions(n int) *catalog.Control {
	qs := make([]catalog.Question, n)
	for i := range qs {
		qs[i] = catalog.Question{Text: "q"}
	}
	return &catalog.Control{ID: "c1", FrameworkID: "fw-1", Questions: qs}
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, Patch{}.Empty())

	s := "x"
	assert.False(t, Patch{Justification: &s, JustificationSet: true}.Empty())
	assert.False(t, Patch{JustificationSet: true}.Empty(), "explicit null still counts as a change")

	status := StatusYes
	assert.False(t, Patch{ComplianceStatus: &status}.Empty())
}

func TestPatchApplyLeavesUnsetFieldsAlone(t *testing.T) {
	r := &Response{
		Justification: "old reasoning",
		MaturityLevel: "3",
	}

	level := "4"
	Patch{MaturityLevel: &level, MaturityLevelSet: true}.Apply(r)

	assert.Equal(t, "4", r.MaturityLevel)
	assert.Equal(t, "old reasoning", r.Justification, "unset fields survive the patch")
}

func TestPatchApplyExplicitNullClears(t *testing.T) {
	r := &Response{
		Justification:    "stale",
		EvidencePath:     "acme/audit/file.pdf",
		EvidenceFilename: "file.pdf",
	}

	Patch{
		JustificationSet:    true,
		EvidencePathSet:     true,
		EvidenceFilenameSet: true,
	}.Apply(r)

	assert.Empty(t, r.Justification)
	assert.Empty(t, r.EvidencePath)
	assert.Empty(t, r.EvidenceFilename)
}

func TestPatchApplyReplacesQuestionResponses(t *testing.T) {
	opt := "a"
	r := &Response{QuestionResponses: []QuestionResponse{{}, {}}}

	Patch{
		QuestionResponses:    []QuestionResponse{{SelectedOption: &opt}, {}},
		QuestionResponsesSet: true,
	}.Apply(r)

	assert.Len(t, r.QuestionResponses, 2)
	assert.Equal(t, "a", *r.QuestionResponses[0].SelectedOption)
	assert.Nil(t, r.QuestionResponses[1].SelectedOption)
}

func TestComplianceStatusTerminal(t *testing.T) {
	assert.False(t, StatusNotAnswered.Terminal())
	assert.True(t, StatusYes.Terminal())
	assert.True(t, StatusPartial.Terminal())
	assert.True(t, StatusNo.Terminal())
	assert.True(t, StatusNotApplicable.Terminal())

	assert.True(t, StatusNotAnswered.Valid())
	assert.False(t, ComplianceStatus("Maybe").Valid())
}

func TestPlaceholderShape(t *testing.T) {
	c := testControlWithQuestions(3)
	r := Placeholder("audit-1", c)

	assert.Equal(t, "audit-1", r.AuditID)
	assert.Equal(t, c.ID, r.ControlID)
	assert.Equal(t, StatusNotAnswered, r.ComplianceStatus)
	assert.Len(t, r.QuestionResponses, 3)
	for _, qr := range r.QuestionResponses {
		assert.Nil(t, qr.SelectedOption)
	}
}
