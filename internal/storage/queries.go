package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type RunRow struct {
	ID        string
	Source    string
	Policy    string
	StartedAt string
	RowCount  int64
	Income    string
	Outcome   string
}

type CategoryRow struct {
	RunID    string
	Position int64
	Category string
	Outcome  string
	Income   string
}

const insertRun = `
INSERT INTO runs (id, source, policy, started_at, row_count, income, outcome)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRun(ctx context.Context, arg RunRow) error {
	_, err := q.db.ExecContext(ctx, insertRun,
		arg.ID, arg.Source, arg.Policy, arg.StartedAt, arg.RowCount, arg.Income, arg.Outcome)
	return err
}

const insertRunCategory = `
INSERT INTO run_categories (run_id, position, category, outcome, income)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertRunCategory(ctx context.Context, arg CategoryRow) error {
	_, err := q.db.ExecContext(ctx, insertRunCategory,
		arg.RunID, arg.Position, arg.Category, arg.Outcome, arg.Income)
	return err
}

const listRuns = `
SELECT id, source, policy, started_at, row_count, income, outcome
FROM runs
ORDER BY started_at DESC, id
LIMIT ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]RunRow, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RunRow
	for rows.Next() {
		var i RunRow
		if err := rows.Scan(&i.ID, &i.Source, &i.Policy, &i.StartedAt, &i.RowCount, &i.Income, &i.Outcome); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const listRunCategories = `
SELECT run_id, position, category, outcome, income
FROM run_categories
WHERE run_id = ?
ORDER BY position`

func (q *Queries) ListRunCategories(ctx context.Context, runID string) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listRunCategories, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.RunID, &i.Position, &i.Category, &i.Outcome, &i.Income); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}
