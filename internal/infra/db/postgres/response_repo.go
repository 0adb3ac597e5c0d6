package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	domain "github.com/bryanwahyu/auditflow/internal/domain/responses"
)

type ResponseRepository struct{ db *sql.DB }

func NewResponseRepository(db *sql.DB) *ResponseRepository { return &ResponseRepository{db: db} }

const responseColumns = `
audit_id, control_id, question_responses, compliance_status,
justification_text, maturity_level, evidence_path, evidence_filename,
ai_recommendation, updated_at`

func (r *ResponseRepository) Get(ctx context.Context, tenant, auditID string, controlID catalog.ControlID) (*domain.Response, error) {
	const q = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=$1 AND audit_id=$2 AND control_id=$3 LIMIT 1;`
	resp, err := scanResponse(r.db.QueryRowContext(ctx, q, tenant, auditID, controlID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return nil, nil }
		return nil, err
	}
	return resp, nil
}

func (r *ResponseRepository) ListByAudit(ctx context.Context, tenant, auditID string) (map[catalog.ControlID]*domain.Response, error) {
	const q = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=$1 AND audit_id=$2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, auditID)
	if err != nil { return nil, err }
	defer rows.Close()

	out := make(map[catalog.ControlID]*domain.Response)
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil { return nil, err }
		out[resp.ControlID] = resp
	}
	return out, rows.Err()
}

// Upsert merges the patch into the stored row under a row lock.
func (r *ResponseRepository) Upsert(ctx context.Context, tenant, auditID string, controlID catalog.ControlID, p domain.Patch) (*domain.Response, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil { return nil, err }
	defer tx.Rollback()

	const sel = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=$1 AND audit_id=$2 AND control_id=$3 LIMIT 1
FOR UPDATE;`
	resp, err := scanResponse(tx.QueryRowContext(ctx, sel, tenant, auditID, controlID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) { return nil, err }
		resp = &domain.Response{
			AuditID:          auditID,
			ControlID:        controlID,
			ComplianceStatus: domain.StatusNotAnswered,
		}
	}

	p.Apply(resp)
	resp.UpdatedAt = time.Now()

	qrs, err := marshalJSON(resp.QuestionResponses)
	if err != nil { return nil, err }
	const up = `
INSERT INTO audit_responses
(tenant_id, audit_id, control_id, question_responses, compliance_status,
 justification_text, maturity_level, evidence_path, evidence_filename,
 ai_recommendation, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (tenant_id, audit_id, control_id) DO UPDATE SET
 question_responses = EXCLUDED.question_responses,
 compliance_status = EXCLUDED.compliance_status,
 justification_text = EXCLUDED.justification_text,
 maturity_level = EXCLUDED.maturity_level,
 evidence_path = EXCLUDED.evidence_path,
 evidence_filename = EXCLUDED.evidence_filename,
 ai_recommendation = EXCLUDED.ai_recommendation,
 updated_at = EXCLUDED.updated_at;`
	if _, err := tx.ExecContext(ctx, up,
		tenant, auditID, controlID, qrs, resp.ComplianceStatus,
		nullIfEmpty(resp.Justification), nullIfEmpty(resp.MaturityLevel),
		nullIfEmpty(resp.EvidencePath), nullIfEmpty(resp.EvidenceFilename),
		nullIfEmpty(resp.AIRecommendation), resp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil { return nil, err }
	return resp, nil
}

func (r *ResponseRepository) InitBatch(ctx context.Context, tenant, auditID string, rs []*domain.Response) error {
	if len(rs) == 0 { return nil }
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil { return err }
	defer tx.Rollback()

	const q = `
INSERT INTO audit_responses
(tenant_id, audit_id, control_id, question_responses, compliance_status, updated_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil { return err }
	defer stmt.Close()

	for _, resp := range rs {
		qrs, err := marshalJSON(resp.QuestionResponses)
		if err != nil { return err }
		updated := resp.UpdatedAt
		if updated.IsZero() { updated = time.Now() }
		if _, err := stmt.ExecContext(ctx, tenant, auditID, resp.ControlID, qrs, resp.ComplianceStatus, updated); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ResponseRepository) DeleteByAudit(ctx context.Context, tenant, auditID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM audit_responses WHERE tenant_id=$1 AND audit_id=$2`, tenant, auditID)
	return err
}

func scanResponse(row rowScanner) (*domain.Response, error) {
	var resp domain.Response
	var qrs []byte
	var just, maturity, evPath, evName, aiRec sql.NullString
	if err := row.Scan(
		&resp.AuditID, &resp.ControlID, &qrs, &resp.ComplianceStatus,
		&just, &maturity, &evPath, &evName, &aiRec, &resp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	resp.Justification = fromNull(just)
	resp.MaturityLevel = fromNull(maturity)
	resp.EvidencePath = fromNull(evPath)
	resp.EvidenceFilename = fromNull(evName)
	if len(qrs) > 0 {
		if err := json.Unmarshal(qrs, &resp.QuestionResponses); err != nil { return nil, err }
	}
	resp.AIRecommendation = fromNull(aiRec)
	return &resp, nil
}
