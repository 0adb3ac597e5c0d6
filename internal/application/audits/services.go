package audits

import (
	"context"

	"github.com/google/uuid"

	"github.com/bryanwahyu/auditflow/internal/application"
	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/faults"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// Catalog is the slice of the catalog accessor this service needs.
type Catalog interface {
	ListControls(ctx context.Context, ids []catalog.FrameworkID) ([]*catalog.Control, error)
	GetControl(ctx context.Context, id catalog.ControlID) (*catalog.Control, error)
	ListFrameworksByType(ctx context.Context, domainType string) ([]*catalog.Framework, error)
}

// Service implements the audit use-cases, including progress reconciliation.
// Safe for concurrent use; every reconciliation is a pure function of a fresh
// snapshot, so concurrent runs converge instead of compounding.
type Service struct {
	Audits    audits.Repository
	Responses responses.Repository
	Catalog   Catalog
	Clock     application.Clock
}

// Command to create an audit
type CreateAuditCommand struct {
	TenantID    string
	Name        string
	ClientName  string
	AuditorName string
	DomainType  string
}

// ControlWithResponse pairs a catalog control with its (possibly placeholder)
// response for questionnaire rendering.
type ControlWithResponse struct {
	Control  *catalog.Control    `json:"control"`
	Response *responses.Response `json:"response"`
}

// Create snapshots the frameworks for the requested domain type, persists the
// audit, then eagerly writes one placeholder response per control in a single
// atomic batch. TotalControls is fixed here and never recomputed.
func (s *Service) Create(ctx context.Context, cmd CreateAuditCommand) (*audits.Audit, error) {
	if cmd.Name == "" {
		return nil, faults.Invalidf("name is required")
	}
	if cmd.DomainType == "" {
		return nil, faults.Invalidf("domain_type is required")
	}

	fws, err := s.Catalog.ListFrameworksByType(ctx, cmd.DomainType)
	if err != nil {
		return nil, err
	}
	if len(fws) == 0 {
		return nil, faults.Invalidf("no frameworks registered for domain type %q", cmd.DomainType)
	}
	ids := make([]catalog.FrameworkID, 0, len(fws))
	for _, fw := range fws {
		ids = append(ids, fw.ID)
	}

	controls, err := s.Catalog.ListControls(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	a := &audits.Audit{
		ID:                audits.AuditID(uuid.New().String()),
		TenantID:          cmd.TenantID,
		Name:              cmd.Name,
		ClientName:        cmd.ClientName,
		AuditorName:       cmd.AuditorName,
		DomainType:        cmd.DomainType,
		FrameworksAudited: ids,
		TotalControls:     len(controls),
		OverallScore:      0,
		OverallStatus:     audits.StatusNotStarted,
		CompletedControls: 0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Audits.Save(ctx, a); err != nil {
		return nil, err
	}

	placeholders := make([]*responses.Response, 0, len(controls))
	for _, c := range controls {
		r := responses.Placeholder(string(a.ID), c)
		r.UpdatedAt = now
		placeholders = append(placeholders, r)
	}
	if err := s.Responses.InitBatch(ctx, cmd.TenantID, string(a.ID), placeholders); err != nil {
		return nil, err
	}
	return a, nil
}

// Get loads one audit and reconciles its summary before returning it, so a
// read always reflects the current response snapshot.
func (s *Service) Get(ctx context.Context, tenant string, id audits.AuditID) (*audits.Audit, error) {
	a, err := s.Audits.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, faults.NotFoundf("audit %s", id)
	}
	if _, _, err := s.reconcile(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List paginates audits for a tenant.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) (audits.PaginatedResult, error) {
	return s.Audits.Paginate(ctx, tenant, page, pageSize)
}

// Delete removes an audit and all its responses.
func (s *Service) Delete(ctx context.Context, tenant string, id audits.AuditID) error {
	a, err := s.Audits.Get(ctx, tenant, id)
	if err != nil {
		return err
	}
	if a == nil {
		return faults.NotFoundf("audit %s", id)
	}
	return s.Audits.Delete(ctx, tenant, id)
}

// GetResponse returns the recorded response for one control, or the
// synthesized placeholder when nothing has been recorded yet.
func (s *Service) GetResponse(ctx context.Context, tenant string, auditID audits.AuditID, controlID catalog.ControlID) (*responses.Response, error) {
	a, err := s.Audits.Get(ctx, tenant, auditID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, faults.NotFoundf("audit %s", auditID)
	}
	c, err := s.Catalog.GetControl(ctx, controlID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, faults.NotFoundf("control %s", controlID)
	}
	r, err := s.Responses.Get(ctx, tenant, string(auditID), controlID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = responses.Placeholder(string(auditID), c)
	}
	return r, nil
}

// SubmitResponse merges a partial update into one control's response and then
// reconciles the audit summary against the full snapshot.
func (s *Service) SubmitResponse(ctx context.Context, tenant string, auditID audits.AuditID, controlID catalog.ControlID, p responses.Patch) (*responses.Response, error) {
	if p.Empty() {
		return nil, faults.Invalidf("no fields to update")
	}
	if p.ComplianceStatus != nil && !p.ComplianceStatus.Valid() {
		return nil, faults.Invalidf("unknown compliance_status %q", *p.ComplianceStatus)
	}

	a, err := s.Audits.Get(ctx, tenant, auditID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, faults.NotFoundf("audit %s", auditID)
	}
	c, err := s.Catalog.GetControl(ctx, controlID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, faults.NotFoundf("control %s", controlID)
	}

	r, err := s.Responses.Upsert(ctx, tenant, string(auditID), controlID, p)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.reconcile(ctx, a); err != nil {
		return nil, err
	}
	return r, nil
}

// ControlsWithResponses returns the audit's controls in catalog order, each
// paired with its response (placeholder when not yet recorded).
func (s *Service) ControlsWithResponses(ctx context.Context, tenant string, auditID audits.AuditID) ([]ControlWithResponse, error) {
	a, err := s.Audits.Get(ctx, tenant, auditID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, faults.NotFoundf("audit %s", auditID)
	}
	controls, err := s.Catalog.ListControls(ctx, a.FrameworksAudited)
	if err != nil {
		return nil, err
	}
	snap, err := s.Responses.ListByAudit(ctx, tenant, string(auditID))
	if err != nil {
		return nil, err
	}
	out := make([]ControlWithResponse, 0, len(controls))
	for _, c := range controls {
		r := snap[c.ID]
		if r == nil {
			r = responses.Placeholder(string(auditID), c)
		}
		out = append(out, ControlWithResponse{Control: c, Response: r})
	}
	return out, nil
}

// reconcile recomputes the summary from the full snapshot and writes all
// three summary fields together only when they drifted. Returns the summary
// in force and whether a write happened.
func (s *Service) reconcile(ctx context.Context, a *audits.Audit) (audits.Summary, bool, error) {
	controls, err := s.Catalog.ListControls(ctx, a.FrameworksAudited)
	if err != nil {
		return audits.Summary{}, false, err
	}
	snap, err := s.Responses.ListByAudit(ctx, a.TenantID, string(a.ID))
	if err != nil {
		return audits.Summary{}, false, err
	}

	computed := audits.ComputeSummary(controls, snap, a.TotalControls)
	next, changed := audits.Reconcile(a.Summary(), computed)
	if !changed {
		return next, false, nil
	}

	now := s.Clock.Now()
	if err := s.Audits.UpdateSummary(ctx, a.TenantID, a.ID, next, now); err != nil {
		return next, false, err
	}
	a.ApplySummary(next, now)
	return next, true, nil
}
