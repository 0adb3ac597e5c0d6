package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/auditflow/internal/domain/reports"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
)

const sheetName = "Audit Report"

var headers = []string{
	"Framework", "Control", "Objective", "Compliance Status", "Maturity",
	"Justification", "Evidence", "AI Recommendation", "Question", "Answer",
}

var statusOrder = []responses.ComplianceStatus{
	responses.StatusYes,
	responses.StatusPartial,
	responses.StatusNo,
	responses.StatusNotApplicable,
	responses.StatusNotAnswered,
}

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

// Render produces the tabular report: one row per question per control, with
// control-level cells filled only on the control's first row.
func (r *Renderer) Render(ctx context.Context, rep *reports.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, e := range rep.Entries {
		answers := e.Answers
		if len(answers) == 0 {
			// zero-question control still gets its control-level row
			answers = []reports.QuestionAnswer{{}}
		}
		for i, qa := range answers {
			if i == 0 {
				if err := setRow(f, row, 1, e.Framework, e.Code, e.Objective, string(e.Status),
					e.MaturityLevel, e.Justification, e.EvidenceFilename, e.AIRecommendation); err != nil {
					return nil, err
				}
			}
			if err := setRow(f, row, 9, qa.Question, qa.Answer); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := writeSummarySheet(f, rep); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, rep *reports.Report) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	lines := [][2]any{
		{"Audit", rep.AuditName},
		{"Client", rep.ClientName},
		{"Auditor", rep.AuditorName},
		{"Domain", rep.DomainType},
		{"Overall score", rep.OverallScore},
		{"Overall status", string(rep.OverallStatus)},
		{"Controls completed", fmt.Sprintf("%d of %d", rep.CompletedControls, rep.TotalControls)},
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04 MST")},
	}
	for _, st := range statusOrder {
		if n, ok := rep.StatusTally[st]; ok {
			lines = append(lines, [2]any{string(st), n})
		}
	}
	for i, line := range lines {
		if err := setRow2(f, sheet, i+1, line[0], line[1]); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, row, startCol int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(startCol+i, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func setRow2(f *excelize.File, sheet string, row int, key, value any) error {
	cellA, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellA, key); err != nil {
		return err
	}
	cellB, err := excelize.CoordinatesToCellName(2, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cellB, value)
}
