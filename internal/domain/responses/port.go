package responses

import (
	"context"
	"io"

	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

// Repository port for response persistence.
// Get and ListByAudit return nil (not an error) for absent responses; a
// control that was never answered is a normal state, not a failure.
type Repository interface {
	Get(ctx context.Context, tenant, auditID string, controlID catalog.ControlID) (*Response, error)
	ListByAudit(ctx context.Context, tenant, auditID string) (map[catalog.ControlID]*Response, error)

	// Upsert merges the patch into the stored response (creating it when
	// missing) and returns the merged document.
	Upsert(ctx context.Context, tenant, auditID string, controlID catalog.ControlID, p Patch) (*Response, error)

	// InitBatch writes the placeholder responses for a freshly created audit
	// as one atomic batch: all rows or none.
	InitBatch(ctx context.Context, tenant, auditID string, rs []*Response) error

	DeleteByAudit(ctx context.Context, tenant, auditID string) error
}

// EvidenceStore port for uploaded evidence files
type EvidenceStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error)
}
