package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/auditflow/internal/domain/catalog"
)

type ControlRepository struct{ db *sql.DB }

func NewControlRepository(db *sql.DB) *ControlRepository { return &ControlRepository{db: db} }

// ListByFrameworks returns controls for the given frameworks; callers chunk
// the id set (store membership-query cap).
func (r *ControlRepository) ListByFrameworks(ctx context.Context, ids []domain.FrameworkID) ([]*domain.Control, error) {
	if len(ids) == 0 { return nil, nil }

	ph := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		ph = append(ph, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}
	q := `
SELECT id, framework_id, code, objective, questionnaires
FROM controls
WHERE framework_id IN (` + strings.Join(ph, ",") + `)
ORDER BY framework_id, code;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []*domain.Control
	for rows.Next() {
		c, err := scanControl(rows)
		if err != nil { return nil, err }
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ControlRepository) Get(ctx context.Context, id domain.ControlID) (*domain.Control, error) {
	const q = `
SELECT id, framework_id, code, objective, questionnaires
FROM controls
WHERE id=$1 LIMIT 1;`
	c, err := scanControl(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return nil, nil }
		return nil, err
	}
	return c, nil
}

func scanControl(row rowScanner) (*domain.Control, error) {
	var c domain.Control
	var questionnaires []byte
	if err := row.Scan(&c.ID, &c.FrameworkID, &c.Code, &c.Objective, &questionnaires); err != nil {
		return nil, err
	}
	if len(questionnaires) > 0 {
		if err := json.Unmarshal(questionnaires, &c.Questions); err != nil { return nil, err }
	}
	return &c, nil
}
