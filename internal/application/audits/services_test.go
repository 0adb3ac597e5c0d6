package audits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/faults"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeAuditRepo struct {
	byID          map[audits.AuditID]*audits.Audit
	summaryWrites int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{byID: map[audits.AuditID]*audits.Audit{}}
}

func (f *fakeAuditRepo) Save(ctx context.Context, a *audits.Audit) error {
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAuditRepo) Get(ctx context.Context, tenant string, id audits.AuditID) (*audits.Audit, error) {
	a, ok := f.byID[id]
	if !ok || a.TenantID != tenant {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAuditRepo) Paginate(ctx context.Context, tenant string, page, pageSize int) (audits.PaginatedResult, error) {
	var data []*audits.Audit
	for _, a := range f.byID {
		if a.TenantID == tenant {
			data = append(data, a)
		}
	}
	return audits.PaginatedResult{Data: data, Page: page, PageSize: pageSize, Total: int64(len(data)), TotalPages: 1}, nil
}

func (f *fakeAuditRepo) UpdateSummary(ctx context.Context, tenant string, id audits.AuditID, s audits.Summary, at time.Time) error {
	a := f.byID[id]
	a.ApplySummary(s, at)
	f.summaryWrites++
	return nil
}

func (f *fakeAuditRepo) Delete(ctx context.Context, tenant string, id audits.AuditID) error {
	delete(f.byID, id)
	return nil
}

type fakeResponseRepo struct {
	rows map[string]map[catalog.ControlID]*responses.Response // auditID -> controlID -> row
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{rows: map[string]map[catalog.ControlID]*responses.Response{}}
}

func (f *fakeResponseRepo) Get(ctx context.Context, tenant, auditID string, controlID catalog.ControlID) (*responses.Response, error) {
	r, ok := f.rows[auditID][controlID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResponseRepo) ListByAudit(ctx context.Context, tenant, auditID string) (map[catalog.ControlID]*responses.Response, error) {
	out := map[catalog.ControlID]*responses.Response{}
	for id, r := range f.rows[auditID] {
		cp := *r
		out[id] = &cp
	}
	return out, nil
}

func (f *fakeResponseRepo) Upsert(ctx context.Context, tenant, auditID string, controlID catalog.ControlID, p responses.Patch) (*responses.Response, error) {
	if f.rows[auditID] == nil {
		f.rows[auditID] = map[catalog.ControlID]*responses.Response{}
	}
	r, ok := f.rows[auditID][controlID]
	if !ok {
		r = &responses.Response{AuditID: auditID, ControlID: controlID, ComplianceStatus: responses.StatusNotAnswered}
		f.rows[auditID][controlID] = r
	}
	p.Apply(r)
	cp := *r
	return &cp, nil
}

func (f *fakeResponseRepo) InitBatch(ctx context.Context, tenant, auditID string, rs []*responses.Response) error {
	if f.rows[auditID] == nil {
		f.rows[auditID] = map[catalog.ControlID]*responses.Response{}
	}
	for _, r := range rs {
		cp := *r
		f.rows[auditID][r.ControlID] = &cp
	}
	return nil
}

func (f *fakeResponseRepo) DeleteByAudit(ctx context.Context, tenant, auditID string) error {
	delete(f.rows, auditID)
	return nil
}

type fakeCatalog struct {
	frameworks []*catalog.Framework
	controls   []*catalog.Control
}

func (f *fakeCatalog) ListControls(ctx context.Context, ids []catalog.FrameworkID) ([]*catalog.Control, error) {
	want := map[catalog.FrameworkID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*catalog.Control
	for _, c := range f.controls {
		if want[c.FrameworkID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetControl(ctx context.Context, id catalog.ControlID) (*catalog.Control, error) {
	for _, c := range f.controls {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ListFrameworksByType(ctx context.Context, domainType string) ([]*catalog.Framework, error) {
	var out []*catalog.Framework
	for _, fw := range f.frameworks {
		if fw.Type == domainType {
			out = append(out, fw)
		}
	}
	return out, nil
}

func testControl(id string, fw string, questions int) *catalog.Control {
	qs := make([]catalog.Question, questions)
	for i := range qs {
		qs[i] = catalog.Question{Text: "q", Options: map[string]string{"a": "Yes"}}
	}
	return &catalog.Control{ID: catalog.ControlID(id), FrameworkID: catalog.FrameworkID(fw), Code: id, Questions: qs}
}

func newTestService() (*Service, *fakeAuditRepo, *fakeResponseRepo) {
	ar := newFakeAuditRepo()
	rr := newFakeResponseRepo()
	cat := &fakeCatalog{
		frameworks: []*catalog.Framework{{ID: "fw-1", Name: "CIS", Type: "Cloud"}},
		controls: []*catalog.Control{
			testControl("c1", "fw-1", 1),
			testControl("c2", "fw-1", 2),
		},
	}
	svc := &Service{
		Audits:    ar,
		Responses: rr,
		Catalog:   cat,
		Clock:     fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, ar, rr
}

func TestCreateSnapshotsControlsAndWritesPlaceholders(t *testing.T) {
	svc, ar, rr := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAuditCommand{
		TenantID:   "acme",
		Name:       "Q1 cloud audit",
		ClientName: "ACME Corp",
		DomainType: "Cloud",
	})
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, 2, a.TotalControls)
	assert.Equal(t, []catalog.FrameworkID{"fw-1"}, a.FrameworksAudited)
	assert.Equal(t, audits.StatusNotStarted, a.OverallStatus)
	assert.Equal(t, 0, a.OverallScore)

	stored, _ := ar.Get(ctx, "acme", a.ID)
	require.NotNil(t, stored)

	snap, _ := rr.ListByAudit(ctx, "acme", string(a.ID))
	require.Len(t, snap, 2)
	for _, r := range snap {
		assert.Equal(t, responses.StatusNotAnswered, r.ComplianceStatus)
	}
	assert.Len(t, snap["c2"].QuestionResponses, 2)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAuditCommand{TenantID: "acme", DomainType: "Cloud"})
	assert.ErrorIs(t, err, faults.ErrValidation)

	_, err = svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "x"})
	assert.ErrorIs(t, err, faults.ErrValidation)

	_, err = svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "x", DomainType: "Mainframe"})
	assert.ErrorIs(t, err, faults.ErrValidation)
}

func TestGetUnknownAudit(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Get(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, faults.ErrNotFound)
}

func TestSubmitResponseReconcilesOnce(t *testing.T) {
	svc, ar, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "audit", DomainType: "Cloud"})
	require.NoError(t, err)

	opt := "a"
	status := responses.StatusYes
	r, err := svc.SubmitResponse(ctx, "acme", a.ID, "c1", responses.Patch{
		QuestionResponses:    []responses.QuestionResponse{{SelectedOption: &opt}},
		QuestionResponsesSet: true,
		ComplianceStatus:     &status,
	})
	require.NoError(t, err)
	assert.Equal(t, responses.StatusYes, r.ComplianceStatus)

	// c1 of 2 controls done -> 50%, one summary write
	assert.Equal(t, 1, ar.summaryWrites)
	got, err := svc.Get(ctx, "acme", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.OverallScore)
	assert.Equal(t, audits.StatusInProgress, got.OverallStatus)
	assert.Equal(t, 1, got.CompletedControls)

	// Get on an already reconciled audit does not write again
	assert.Equal(t, 1, ar.summaryWrites)

	// completing the second control transitions to Completed in one write
	_, err = svc.SubmitResponse(ctx, "acme", a.ID, "c2", responses.Patch{
		QuestionResponses:    []responses.QuestionResponse{{SelectedOption: &opt}, {SelectedOption: &opt}},
		QuestionResponsesSet: true,
		ComplianceStatus:     &status,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ar.summaryWrites)

	got, err = svc.Get(ctx, "acme", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.OverallScore)
	assert.Equal(t, audits.StatusCompleted, got.OverallStatus)
	assert.Equal(t, 2, ar.summaryWrites)
}

func TestSubmitResponseValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "audit", DomainType: "Cloud"})
	require.NoError(t, err)

	_, err = svc.SubmitResponse(ctx, "acme", a.ID, "c1", responses.Patch{})
	assert.ErrorIs(t, err, faults.ErrValidation)

	bad := responses.ComplianceStatus("Maybe")
	_, err = svc.SubmitResponse(ctx, "acme", a.ID, "c1", responses.Patch{ComplianceStatus: &bad})
	assert.ErrorIs(t, err, faults.ErrValidation)

	just := "done"
	_, err = svc.SubmitResponse(ctx, "acme", a.ID, "nope", responses.Patch{Justification: &just, JustificationSet: true})
	assert.ErrorIs(t, err, faults.ErrNotFound)

	_, err = svc.SubmitResponse(ctx, "acme", "missing", "c1", responses.Patch{Justification: &just, JustificationSet: true})
	assert.ErrorIs(t, err, faults.ErrNotFound)
}

func TestGetResponseSynthesizesPlaceholder(t *testing.T) {
	svc, _, rr := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "audit", DomainType: "Cloud"})
	require.NoError(t, err)

	// wipe the stored rows to simulate a control added to the catalog later
	require.NoError(t, rr.DeleteByAudit(ctx, "acme", string(a.ID)))

	r, err := svc.GetResponse(ctx, "acme", a.ID, "c2")
	require.NoError(t, err)
	assert.Equal(t, responses.StatusNotAnswered, r.ComplianceStatus)
	assert.Len(t, r.QuestionResponses, 2)

	_, err = svc.GetResponse(ctx, "acme", a.ID, "nope")
	assert.ErrorIs(t, err, faults.ErrNotFound)
}

func TestControlsWithResponsesKeepsCatalogOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAuditCommand{TenantID: "acme", Name: "audit", DomainType: "Cloud"})
	require.NoError(t, err)

	out, err := svc.ControlsWithResponses(ctx, "acme", a.ID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, catalog.ControlID("c1"), out[0].Control.ID)
	assert.Equal(t, catalog.ControlID("c2"), out[1].Control.ID)
	assert.NotNil(t, out[0].Response)
}

func TestDeleteUnknownAudit(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, faults.ErrNotFound)
}
