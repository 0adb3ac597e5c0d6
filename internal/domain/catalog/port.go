package catalog

import "context"

// FrameworkRepository port for framework reference data
type FrameworkRepository interface {
	List(ctx context.Context) ([]*Framework, error)
	ListByType(ctx context.Context, domainType string) ([]*Framework, error)
	Get(ctx context.Context, id FrameworkID) (*Framework, error)
}

// ControlRepository port for control reference data.
// ListByFrameworks may be called with at most 10 framework ids per call; the
// backing store rejects larger membership queries. Callers chunk.
type ControlRepository interface {
	ListByFrameworks(ctx context.Context, ids []FrameworkID) ([]*Control, error)
	Get(ctx context.Context, id ControlID) (*Control, error)
}
