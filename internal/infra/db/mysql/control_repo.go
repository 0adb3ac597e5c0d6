package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	domain "github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

type ControlRepository struct {
	db *sql.DB
}

func NewControlRepository(db *sql.DB) *ControlRepository {
	return &ControlRepository{db: db}
}

// ListByFrameworks returns the controls of the given frameworks in
// framework+code order. The caller is responsible for chunking the id set;
// the store caps IN-membership queries.
func (r *ControlRepository) ListByFrameworks(ctx context.Context, ids []domain.FrameworkID) ([]*domain.Control, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `
SELECT id, framework_id, code, objective, questionnaires
FROM controls
WHERE framework_id IN (` + placeholders + `)
ORDER BY framework_id, code;`

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Control
	for rows.Next() {
		c, err := scanControl(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get by ID; nil when absent
func (r *ControlRepository) Get(ctx context.Context, id domain.ControlID) (*domain.Control, error) {
	const q = `
SELECT id, framework_id, code, objective, questionnaires
FROM controls
WHERE id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, id)
	c, err := scanControl(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanControl(row rowScanner) (*domain.Control, error) {
	var c domain.Control
	var questionnaires []byte
	if err := row.Scan(&c.ID, &c.FrameworkID, &c.Code, &c.Objective, &questionnaires); err != nil {
		return nil, err
	}
	if len(questionnaires) > 0 {
		if err := json.Unmarshal(questionnaires, &c.Questions); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
