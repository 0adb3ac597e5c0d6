package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/bryanwahyu/auditflow/internal/domain/reports"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

// statusOrder keeps the summary tally stable across renders.
var statusOrder = []responses.ComplianceStatus{
	responses.StatusYes,
	responses.StatusPartial,
	responses.StatusNo,
	responses.StatusNotApplicable,
	responses.StatusNotAnswered,
}

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

// Render produces the paginated report document.
func (r *Renderer) Render(ctx context.Context, rep *reports.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Compliance Audit Report - %s", rep.AuditName), true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Compliance Audit Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, rep.AuditName, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// client block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Engagement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	kv := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
	}
	kv("Client", rep.ClientName)
	kv("Auditor", rep.AuditorName)
	kv("Domain", rep.DomainType)
	kv("Generated", rep.GeneratedAt.Format("2006-01-02 15:04 MST"))
	kv("Progress", fmt.Sprintf("%d%% (%s)", rep.OverallScore, rep.OverallStatus))
	kv("Controls completed", fmt.Sprintf("%d of %d", rep.CompletedControls, rep.TotalControls))
	pdf.Ln(4)

	// status tally
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Compliance Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, st := range statusOrder {
		if n, ok := rep.StatusTally[st]; ok && n > 0 {
			pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d", st, n), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	// per-control sections
	for _, e := range rep.Entries {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s  [%s]", e.Code, e.Status), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, e.Objective, "", "L", false)
		if e.MaturityLevel != "" {
			pdf.MultiCell(0, 5, "Maturity: "+e.MaturityLevel, "", "L", false)
		}
		if e.Justification != "" {
			pdf.MultiCell(0, 5, "Justification: "+e.Justification, "", "L", false)
		}
		if e.EvidenceFilename != "" {
			pdf.MultiCell(0, 5, "Evidence: "+e.EvidenceFilename, "", "L", false)
		}
		for _, qa := range e.Answers {
			answer := qa.Answer
			if answer == "" {
				answer = "(unanswered)"
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("Q: %s", qa.Question), "", "L", false)
			pdf.MultiCell(0, 5, fmt.Sprintf("A: %s", answer), "", "L", false)
		}
		if e.AIRecommendation != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5, "Recommendation: "+e.AIRecommendation, "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
