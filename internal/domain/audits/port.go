package audits

import (
	"context"
	"time"
)

// Repository port for audit persistence.
// Get returns nil (not an error) when the audit does not exist.
type Repository interface {
	Save(ctx context.Context, a *Audit) error
	Get(ctx context.Context, tenant string, id AuditID) (*Audit, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (PaginatedResult, error)

	// UpdateSummary writes the three summary fields and updated_at as one
	// atomic statement; they are never written partially.
	UpdateSummary(ctx context.Context, tenant string, id AuditID, s Summary, at time.Time) error

	// Delete removes the audit together with its responses.
	Delete(ctx context.Context, tenant string, id AuditID) error
}
