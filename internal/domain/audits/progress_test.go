package audits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

func strptr(s string) *string { return &s }

func control(id string, questions int) *catalog.Control {
	qs := make([]catalog.Question, questions)
	for i := range qs {
		qs[i] = catalog.Question{Text: "q", Options: map[string]string{"a": "Yes", "b": "No"}}
	}
	return &catalog.Control{ID: catalog.ControlID(id), FrameworkID: "fw-1", Code: id, Questions: qs}
}

func answered(c *catalog.Control, status responses.ComplianceStatus, answers int) *responses.Response {
	r := responses.Placeholder("audit-1", c)
	r.ComplianceStatus = status
	for i := 0; i < answers && i < len(r.QuestionResponses); i++ {
		r.QuestionResponses[i].SelectedOption = strptr("a")
	}
	return r
}

func TestControlComplete(t *testing.T) {
	c := control("c1", 2)

	t.Run("nil control", func(t *testing.T) {
		assert.False(t, ControlComplete(nil, answered(c, responses.StatusYes, 2)))
	})

	t.Run("zero questions never completes", func(t *testing.T) {
		empty := control("c0", 0)
		r := answered(empty, responses.StatusYes, 0)
		assert.False(t, ControlComplete(empty, r))
	})

	t.Run("nil response", func(t *testing.T) {
		assert.False(t, ControlComplete(c, nil))
	})

	t.Run("placeholder is incomplete", func(t *testing.T) {
		assert.False(t, ControlComplete(c, responses.Placeholder("audit-1", c)))
	})

	t.Run("answers without terminal status", func(t *testing.T) {
		r := answered(c, responses.StatusNotAnswered, 2)
		assert.False(t, ControlComplete(c, r))
	})

	t.Run("terminal status without all answers", func(t *testing.T) {
		r := answered(c, responses.StatusYes, 1)
		assert.False(t, ControlComplete(c, r))
	})

	t.Run("all answers plus terminal status", func(t *testing.T) {
		assert.True(t, ControlComplete(c, answered(c, responses.StatusYes, 2)))
		assert.True(t, ControlComplete(c, answered(c, responses.StatusNo, 2)))
		assert.True(t, ControlComplete(c, answered(c, responses.StatusPartial, 2)))
		assert.True(t, ControlComplete(c, answered(c, responses.StatusNotApplicable, 2)))
	})
}

func TestComputeSummaryRounding(t *testing.T) {
	controls := []*catalog.Control{control("c1", 1), control("c2", 1), control("c3", 1)}

	snap := map[catalog.ControlID]*responses.Response{
		"c1": answered(controls[0], responses.StatusYes, 1),
	}
	s := ComputeSummary(controls, snap, 3)
	assert.Equal(t, 33, s.Score, "1/3 rounds to 33")
	assert.Equal(t, StatusInProgress, s.Status)
	assert.Equal(t, 1, s.CompletedControls)

	snap["c2"] = answered(controls[1], responses.StatusPartial, 1)
	s = ComputeSummary(controls, snap, 3)
	assert.Equal(t, 67, s.Score, "2/3 rounds to 67")
	assert.Equal(t, StatusInProgress, s.Status)
	assert.Equal(t, 2, s.CompletedControls)

	snap["c3"] = answered(controls[2], responses.StatusNo, 1)
	s = ComputeSummary(controls, snap, 3)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, 3, s.CompletedControls)
}

func TestComputeSummaryZeroExpected(t *testing.T) {
	s := ComputeSummary(nil, nil, 0)
	assert.Equal(t, Summary{Score: 0, Status: StatusNotStarted, CompletedControls: 0}, s)
}

func TestComputeSummarySkipsStaleReferences(t *testing.T) {
	controls := []*catalog.Control{control("c1", 1)}
	snap := map[catalog.ControlID]*responses.Response{
		"c1":   answered(controls[0], responses.StatusYes, 1),
		"gone": answered(control("gone", 1), responses.StatusYes, 1),
	}
	s := ComputeSummary(controls, snap, 1)
	assert.Equal(t, 1, s.CompletedControls, "responses for unknown controls do not count")
	assert.Equal(t, 100, s.Score)
}

func TestStatusForScore(t *testing.T) {
	assert.Equal(t, StatusNotStarted, StatusForScore(0))
	assert.Equal(t, StatusInProgress, StatusForScore(1))
	assert.Equal(t, StatusInProgress, StatusForScore(50))
	assert.Equal(t, StatusInProgress, StatusForScore(99))
	assert.Equal(t, StatusCompleted, StatusForScore(100))
}

func TestReconcileIdempotent(t *testing.T) {
	cur := Summary{Score: 67, Status: StatusInProgress, CompletedControls: 2}

	next, changed := Reconcile(cur, cur)
	assert.False(t, changed)
	assert.Equal(t, cur, next)

	computed := Summary{Score: 100, Status: StatusCompleted, CompletedControls: 3}
	next, changed = Reconcile(cur, computed)
	require.True(t, changed)
	assert.Equal(t, computed, next)

	// a second run against the applied summary is a no-op
	_, changed = Reconcile(next, computed)
	assert.False(t, changed)
}

func TestReconcileConvergesAsAnswersArrive(t *testing.T) {
	controls := []*catalog.Control{control("c1", 2), control("c2", 1)}
	snap := map[catalog.ControlID]*responses.Response{}
	cur := Summary{Status: StatusNotStarted}

	// nothing answered yet
	computed := ComputeSummary(controls, snap, 2)
	next, changed := Reconcile(cur, computed)
	assert.False(t, changed)

	// first control done: 1/2 -> 50
	snap["c1"] = answered(controls[0], responses.StatusYes, 2)
	computed = ComputeSummary(controls, snap, 2)
	next, changed = Reconcile(next, computed)
	require.True(t, changed)
	assert.Equal(t, Summary{Score: 50, Status: StatusInProgress, CompletedControls: 1}, next)

	// partial progress on the second control changes nothing
	snap["c2"] = answered(controls[1], responses.StatusNotAnswered, 1)
	computed = ComputeSummary(controls, snap, 2)
	next, changed = Reconcile(next, computed)
	assert.False(t, changed)

	// second control done: transition to Completed happens in one step
	snap["c2"].ComplianceStatus = responses.StatusNo
	computed = ComputeSummary(controls, snap, 2)
	next, changed = Reconcile(next, computed)
	require.True(t, changed)
	assert.Equal(t, Summary{Score: 100, Status: StatusCompleted, CompletedControls: 2}, next)
}
