package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	domain "github.com/bryanwahyu/auditflow/internal/domain/responses"
)

type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

const responseColumns = `
audit_id, control_id, question_responses, compliance_status,
justification_text, maturity_level, evidence_path, evidence_filename,
ai_recommendation, updated_at`

// Get by audit + control; nil when not yet recorded (a normal state)
func (r *ResponseRepository) Get(ctx context.Context, tenant, auditID string, controlID catalog.ControlID) (*domain.Response, error) {
	const q = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=? AND audit_id=? AND control_id=? LIMIT 1;`
	resp, err := scanResponse(r.db.QueryRowContext(ctx, q, tenant, auditID, controlID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

// ListByAudit returns the full response snapshot keyed by control id.
func (r *ResponseRepository) ListByAudit(ctx context.Context, tenant, auditID string) (map[catalog.ControlID]*domain.Response, error) {
	const q = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=? AND audit_id=?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[catalog.ControlID]*domain.Response)
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out[resp.ControlID] = resp
	}
	return out, rows.Err()
}

// Upsert loads the stored response (locked), merges the patch in Go, and
// writes the full row back. Merge semantics live in the Patch, not in SQL.
func (r *ResponseRepository) Upsert(ctx context.Context, tenant, auditID string, controlID catalog.ControlID, p domain.Patch) (*domain.Response, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const sel = `
SELECT` + responseColumns + `
FROM audit_responses
WHERE tenant_id=? AND audit_id=? AND control_id=? LIMIT 1
FOR UPDATE;`
	resp, err := scanResponse(tx.QueryRowContext(ctx, sel, tenant, auditID, controlID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		resp = &domain.Response{
			AuditID:          auditID,
			ControlID:        controlID,
			ComplianceStatus: domain.StatusNotAnswered,
		}
	}

	p.Apply(resp)
	resp.UpdatedAt = time.Now()

	qrs, err := marshalJSON(resp.QuestionResponses)
	if err != nil {
		return nil, err
	}
	const up = `
INSERT INTO audit_responses
(tenant_id, audit_id, control_id, question_responses, compliance_status,
 justification_text, maturity_level, evidence_path, evidence_filename,
 ai_recommendation, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 question_responses=VALUES(question_responses),
 compliance_status=VALUES(compliance_status),
 justification_text=VALUES(justification_text),
 maturity_level=VALUES(maturity_level),
 evidence_path=VALUES(evidence_path),
 evidence_filename=VALUES(evidence_filename),
 ai_recommendation=VALUES(ai_recommendation),
 updated_at=VALUES(updated_at);`
	if _, err := tx.ExecContext(ctx, up,
		tenant, auditID, controlID, qrs, resp.ComplianceStatus,
		nullIfEmpty(resp.Justification), nullIfEmpty(resp.MaturityLevel),
		nullIfEmpty(resp.EvidencePath), nullIfEmpty(resp.EvidenceFilename),
		nullIfEmpty(resp.AIRecommendation), resp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return resp, nil
}

// InitBatch writes the placeholder responses for a new audit atomically.
func (r *ResponseRepository) InitBatch(ctx context.Context, tenant, auditID string, rs []*domain.Response) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
INSERT INTO audit_responses
(tenant_id, audit_id, control_id, question_responses, compliance_status, updated_at)
VALUES (?,?,?,?,?,?);`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, resp := range rs {
		qrs, err := marshalJSON(resp.QuestionResponses)
		if err != nil {
			return err
		}
		updated := resp.UpdatedAt
		if updated.IsZero() {
			updated = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, tenant, auditID, resp.ControlID, qrs, resp.ComplianceStatus, updated); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ResponseRepository) DeleteByAudit(ctx context.Context, tenant, auditID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM audit_responses WHERE tenant_id=? AND audit_id=?`, tenant, auditID)
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
	resp.AIRecommendation = fromNull(aiRec)
	if len(qrs) > 0 {
		if err := json.Unmarshal(qrs, &resp.QuestionResponses); err != nil {
			return nil, err
		}
	}
	return &resp, nil
}
