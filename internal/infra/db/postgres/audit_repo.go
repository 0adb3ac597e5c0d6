package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	domain "github.com/bryanwahyu/auditflow/internal/domain/audits"
)

type AuditRepository struct{ db *sql.DB }

func NewAuditRepository(db *sql.DB) *AuditRepository { return &AuditRepository{db: db} }

// Save insert/update Audit record; the creation-time snapshot columns are not
// touched by the conflict branch.
func (r *AuditRepository) Save(ctx context.Context, a *domain.Audit) error {
	const q = `
INSERT INTO audits
(id, tenant_id, name, client_name, auditor_name, domain_type,
 frameworks_audited, total_controls,
 overall_score, overall_status, completed_controls,
 created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
 name = EXCLUDED.name,
 client_name = EXCLUDED.client_name,
 auditor_name = EXCLUDED.auditor_name,
 updated_at = EXCLUDED.updated_at;`

	fws, err := marshalJSON(a.FrameworksAudited)
	if err != nil { return err }
	tenant := stringOrDash(a.TenantID)
	created := a.CreatedAt
	if created.IsZero() { created = time.Now() }
	updated := a.UpdatedAt
	if updated.IsZero() { updated = created }

	_, err = r.db.ExecContext(ctx, q,
		a.ID, tenant, a.Name, a.ClientName, a.AuditorName, a.DomainType,
		fws, a.TotalControls,
		a.OverallScore, a.OverallStatus, a.CompletedControls,
		created, updated,
	)
	return err
}

func (r *AuditRepository) Get(ctx context.Context, tenant string, id domain.AuditID) (*domain.Audit, error) {
	const q = `
SELECT id, tenant_id, name, client_name, auditor_name, domain_type,
       frameworks_audited, total_controls,
       overall_score, overall_status, completed_controls,
       created_at, updated_at
FROM audits
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	a, err := scanAudit(r.db.QueryRowContext(ctx, q, tenant, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return nil, nil }
		return nil, err
	}
	return a, nil
}

func (r *AuditRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 { page = 1 }
	if pageSize <= 0 { pageSize = 20 }
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, name, client_name, auditor_name, domain_type,
       frameworks_audited, total_controls,
       overall_score, overall_status, completed_controls,
       created_at, updated_at
FROM audits
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil { return domain.PaginatedResult{}, err }
	defer rows.Close()

	var list []*domain.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil { return domain.PaginatedResult{}, err }
		list = append(list, a)
	}
	if err := rows.Err(); err != nil { return domain.PaginatedResult{}, err }

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits WHERE tenant_id=$1`, tenant).Scan(&total); err != nil {
		return domain.PaginatedResult{}, err
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateSummary writes the three summary fields plus updated_at atomically.
func (r *AuditRepository) UpdateSummary(ctx context.Context, tenant string, id domain.AuditID, s domain.Summary, at time.Time) error {
	const q = `
UPDATE audits
SET overall_score = $1,
    overall_status = $2,
    completed_controls = $3,
    updated_at = $4
WHERE tenant_id = $5 AND id = $6;`
	_, err := r.db.ExecContext(ctx, q, s.Score, s.Status, s.CompletedControls, at, tenant, id)
	return err
}

func (r *AuditRepository) Delete(ctx context.Context, tenant string, id domain.AuditID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil { return err }
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_responses WHERE tenant_id=$1 AND audit_id=$2`, tenant, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM audits WHERE tenant_id=$1 AND id=$2`, tenant, id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanAudit(row rowScanner) (*domain.Audit, error) {
	var a domain.Audit
	var fws []byte
	var auditor sql.NullString
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.Name, &a.ClientName, &auditor, &a.DomainType,
		&fws, &a.TotalControls,
		&a.OverallScore, &a.OverallStatus, &a.CompletedControls,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.AuditorName = fromNull(auditor)
	if len(fws) > 0 {
		if err := json.Unmarshal(fws, &a.FrameworksAudited); err != nil { return nil, err }
	}
	return &a, nil
}
