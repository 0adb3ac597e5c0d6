package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	domain "github.com/bryanwahyu/auditflow/internal/domain/audits"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Save insert/update Audit record. The frameworks snapshot and total control
// count are only ever written at creation; the upsert leaves them alone.
func (r *AuditRepository) Save(ctx context.Context, a *domain.Audit) error {
	const q = `
INSERT INTO audits
(id, tenant_id, name, client_name, auditor_name, domain_type,
 frameworks_audited, total_controls,
 overall_score, overall_status, completed_controls,
 created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 name=VALUES(name), client_name=VALUES(client_name), auditor_name=VALUES(auditor_name),
 updated_at=VALUES(updated_at);
`
	fws, err := marshalJSON(a.FrameworksAudited)
	if err != nil {
		return err
	}
	tenant := stringOrDash(a.TenantID)
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, tenant, a.Name, a.ClientName, a.AuditorName, a.DomainType,
		fws, a.TotalControls,
		a.OverallScore, a.OverallStatus, a.CompletedControls,
		created, updated,
	)
	return err
}

// Get by ID + Tenant; nil when absent
func (r *AuditRepository) Get(ctx context.Context, tenant string, id domain.AuditID) (*domain.Audit, error) {
	const q = `
SELECT id, tenant_id, name, client_name, auditor_name, domain_type,
       frameworks_audited, total_controls,
       overall_score, overall_status, completed_controls,
       created_at, updated_at
FROM audits
WHERE tenant_id=? AND id=? LIMIT 1;`
	a, err := scanAudit(r.db.QueryRowContext(ctx, q, tenant, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Paginate with offset + limit (classic pagination)
func (r *AuditRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, name, client_name, auditor_name, domain_type,
       frameworks_audited, total_controls,
       overall_score, overall_status, completed_controls,
       created_at, updated_at
FROM audits
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	var list []*domain.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits WHERE tenant_id=?`, tenant).Scan(&total); err != nil {
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

// UpdateSummary writes the three summary fields plus updated_at in a single
// statement so they are never observed partially.
func (r *AuditRepository) UpdateSummary(ctx context.Context, tenant string, id domain.AuditID, s domain.Summary, at time.Time) error {
	const q = `
UPDATE audits
SET overall_score = ?,
    overall_status = ?,
    completed_controls = ?,
    updated_at = ?
WHERE tenant_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, s.Score, s.Status, s.CompletedControls, at, tenant, id)
	return err
}

// Delete removes the audit and its responses in one transaction.
func (r *AuditRepository) Delete(ctx context.Context, tenant string, id domain.AuditID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_responses WHERE tenant_id=? AND audit_id=?`, tenant, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM audits WHERE tenant_id=? AND id=?`, tenant, id); err != nil {
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
		if err := json.Unmarshal(fws, &a.FrameworksAudited); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
