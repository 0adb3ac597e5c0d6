package reports

import (
	"context"

	"github.com/bryanwahyu/auditflow/internal/application"
	appaudits "github.com/bryanwahyu/auditflow/internal/application/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/faults"
	"github.com/bryanwahyu/auditflow/internal/domain/reports"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// Service assembles the report structure and hands it to a renderer.
type Service struct {
	Audits    audits.Repository
	Responses responses.Repository
	Catalog   appaudits.Catalog
	PDF       reports.Renderer
	Excel     reports.Renderer
	Clock     application.Clock
}

// Build assembles the full report for one audit: header, client block,
// per-control entries in catalog order with per-question answers, and the
// status tally. Controls without a recorded response count as "Not Answered".
func (s *Service) Build(ctx context.Context, tenant string, auditID audits.AuditID) (*reports.Report, error) {
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

	rep := &reports.Report{
		AuditName:         a.Name,
		ClientName:        a.ClientName,
		AuditorName:       a.AuditorName,
		DomainType:        a.DomainType,
		OverallScore:      a.OverallScore,
		OverallStatus:     a.OverallStatus,
		TotalControls:     a.TotalControls,
		CompletedControls: a.CompletedControls,
		GeneratedAt:       s.Clock.Now(),
		StatusTally:       make(map[responses.ComplianceStatus]int),
	}

	for _, c := range controls {
		r := snap[c.ID]
		if r == nil {
			r = responses.Placeholder(string(auditID), c)
		}
		entry := reports.ControlEntry{
			Code:             c.Code,
			Objective:        c.Objective,
			Framework:        string(c.FrameworkID),
			Status:           r.ComplianceStatus,
			MaturityLevel:    r.MaturityLevel,
			Justification:    r.Justification,
			EvidenceFilename: r.EvidenceFilename,
			AIRecommendation: r.AIRecommendation,
			Answers:          answersFor(c, r),
		}
		rep.Entries = append(rep.Entries, entry)
		rep.StatusTally[r.ComplianceStatus]++
	}
	return rep, nil
}

// ExportPDF builds the report and renders the paginated document form.
func (s *Service) ExportPDF(ctx context.Context, tenant string, auditID audits.AuditID) ([]byte, error) {
	rep, err := s.Build(ctx, tenant, auditID)
	if err != nil {
		return nil, err
	}
	return s.PDF.Render(ctx, rep)
}

// ExportExcel builds the report and renders the tabular spreadsheet form.
func (s *Service) ExportExcel(ctx context.Context, tenant string, auditID audits.AuditID) ([]byte, error) {
	rep, err := s.Build(ctx, tenant, auditID)
	if err != nil {
		return nil, err
	}
	return s.Excel.Render(ctx, rep)
}

// answersFor resolves each question's answer text: explicit option text when
// recorded, otherwise the option label looked up from the question, otherwise
// empty for unanswered questions.
func answersFor(c *catalog.Control, r *responses.Response) []reports.QuestionAnswer {
	out := make([]reports.QuestionAnswer, 0, len(c.Questions))
	for i, q := range c.Questions {
		qa := reports.QuestionAnswer{Question: q.Text}
		if i < len(r.QuestionResponses) {
			qr := r.QuestionResponses[i]
			switch {
			case qr.OptionText != nil:
				qa.Answer = *qr.OptionText
			case qr.SelectedOption != nil:
				if label, ok := q.Options[*qr.SelectedOption]; ok {
					qa.Answer = label
				} else {
					qa.Answer = *qr.SelectedOption
				}
			}
		}
		out = append(out, qa)
	}
	return out
}
