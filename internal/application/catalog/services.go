package catalog

import (
	"context"

	domain "github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

// maxFrameworksPerQuery is the store's cap on equality-membership queries;
// larger framework sets are resolved in multiple round trips.
const maxFrameworksPerQuery = 10

// Service implements catalog lookups over the reference-data repositories.
type Service struct {
	Frameworks domain.FrameworkRepository
	Controls   domain.ControlRepository
}

// ListControls returns the union of controls belonging to the given
// frameworks, chunking the underlying membership queries. An empty id set
// yields an empty result, never an error.
func (s *Service) ListControls(ctx context.Context, ids []domain.FrameworkID) ([]*domain.Control, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*domain.Control
	for start := 0; start < len(ids); start += maxFrameworksPerQuery {
		end := start + maxFrameworksPerQuery
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := s.Controls.ListByFrameworks(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// GetControl fetches one control; nil when absent.
func (s *Service) GetControl(ctx context.Context, id domain.ControlID) (*domain.Control, error) {
	return s.Controls.Get(ctx, id)
}

// ListFrameworks returns all frameworks.
func (s *Service) ListFrameworks(ctx context.Context) ([]*domain.Framework, error) {
	return s.Frameworks.List(ctx)
}

// ListFrameworksByType returns the frameworks tagged with the given domain type.
func (s *Service) ListFrameworksByType(ctx context.Context, domainType string) ([]*domain.Framework, error) {
	return s.Frameworks.ListByType(ctx, domainType)
}
