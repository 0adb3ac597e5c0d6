package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

type recordingControlRepo struct {
	chunkSizes []int
	err        error
}

func (r *recordingControlRepo) ListByFrameworks(ctx context.Context, ids []domain.FrameworkID) ([]*domain.Control, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.chunkSizes = append(r.chunkSizes, len(ids))
	out := make([]*domain.Control, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.Control{ID: domain.ControlID("c-" + string(id)), FrameworkID: id})
	}
	return out, nil
}

func (r *recordingControlRepo) Get(ctx context.Context, id domain.ControlID) (*domain.Control, error) {
	return nil, nil
}

func frameworkIDs(n int) []domain.FrameworkID {
	ids := make([]domain.FrameworkID, n)
	for i := range ids {
		ids[i] = domain.FrameworkID(fmt.Sprintf("fw-%d", i))
	}
	return ids
}

func TestListControlsChunksMembershipQueries(t *testing.T) {
	repo := &recordingControlRepo{}
	svc := &Service{Controls: repo}

	out, err := svc.ListControls(context.Background(), frameworkIDs(25))
	require.NoError(t, err)

	assert.Len(t, out, 25, "results of all chunks are concatenated")
	assert.Equal(t, []int{10, 10, 5}, repo.chunkSizes, "no query exceeds the store cap")
}

func TestListControlsSingleChunk(t *testing.T) {
	repo := &recordingControlRepo{}
	svc := &Service{Controls: repo}

	out, err := svc.ListControls(context.Background(), frameworkIDs(10))
	require.NoError(t, err)
	assert.Len(t, out, 10)
	assert.Equal(t, []int{10}, repo.chunkSizes)
}

func TestListControlsEmptyInput(t *testing.T) {
	repo := &recordingControlRepo{}
	svc := &Service{Controls: repo}

	out, err := svc.ListControls(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Empty(t, repo.chunkSizes, "no query is issued for an empty id set")
}

func TestListControlsPropagatesError(t *testing.T) {
	boom := errors.New("store down")
	svc := &Service{Controls: &recordingControlRepo{err: boom}}

	_, err := svc.ListControls(context.Background(), frameworkIDs(3))
	assert.ErrorIs(t, err, boom)
}
