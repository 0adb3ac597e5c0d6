package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

type FrameworkRepository struct {
	db *sql.DB
}

func NewFrameworkRepository(db *sql.DB) *FrameworkRepository {
	return &FrameworkRepository{db: db}
}

func (r *FrameworkRepository) List(ctx context.Context) ([]*domain.Framework, error) {
	const q = `SELECT id, name, type FROM frameworks ORDER BY id;`
	return r.query(ctx, q)
}

func (r *FrameworkRepository) ListByType(ctx context.Context, domainType string) ([]*domain.Framework, error) {
	const q = `SELECT id, name, type FROM frameworks WHERE type=? ORDER BY id;`
	return r.query(ctx, q, domainType)
}

// Get by ID; nil when absent
func (r *FrameworkRepository) Get(ctx context.Context, id domain.FrameworkID) (*domain.Framework, error) {
	const q = `SELECT id, name, type FROM frameworks WHERE id=? LIMIT 1;`
	var fw domain.Framework
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&fw.ID, &fw.Name, &fw.Type); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fw, nil
}

func (r *FrameworkRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Framework, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Framework
	for rows.Next() {
		var fw domain.Framework
		if err := rows.Scan(&fw.ID, &fw.Name, &fw.Type); err != nil {
			return nil, err
		}
		out = append(out, &fw)
	}
	return out, rows.Err()
}
