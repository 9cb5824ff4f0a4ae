package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"bankpivot/internal/core"
	"bankpivot/internal/log"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository archives finished runs. It never feeds back into the
// computation of a report.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores a run and its displayed categories in one transaction.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run core.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	err = q.InsertRun(ctx, RunRow{
		ID:        run.ID,
		Source:    run.Source,
		Policy:    run.Policy,
		StartedAt: run.StartedAt.UTC().Format(timeLayout),
		RowCount:  int64(run.Rows),
		Income:    run.Totals.Income.String(),
		Outcome:   run.Totals.Outcome.String(),
	})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, c := range run.Categories {
		err := q.InsertRunCategory(ctx, CategoryRow{
			RunID:    run.ID,
			Position: int64(i),
			Category: c.Category,
			Outcome:  c.Outcome.String(),
			Income:   c.Income.String(),
		})
		if err != nil {
			return fmt.Errorf("insert category %q: %w", c.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}

	r.logger.InfoContext(ctx, "Run saved to SQLite",
		log.FieldRunID, run.ID,
		log.FieldSource, run.Source,
		log.FieldCategories, len(run.Categories))
	return nil
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]core.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.queries.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]core.Run, 0, len(rows))
	for _, row := range rows {
		run, err := toRun(row)
		if err != nil {
			return nil, err
		}
		cats, err := r.queries.ListRunCategories(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("list categories of run %s: %w", row.ID, err)
		}
		for _, c := range cats {
			s, err := toSummary(c)
			if err != nil {
				return nil, err
			}
			run.Categories = append(run.Categories, s)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func toRun(row RunRow) (core.Run, error) {
	started, err := time.Parse(timeLayout, row.StartedAt)
	if err != nil {
		return core.Run{}, fmt.Errorf("run %s: parse started_at: %w", row.ID, err)
	}
	income, err := decimal.NewFromString(row.Income)
	if err != nil {
		return core.Run{}, fmt.Errorf("run %s: parse income: %w", row.ID, err)
	}
	outcome, err := decimal.NewFromString(row.Outcome)
	if err != nil {
		return core.Run{}, fmt.Errorf("run %s: parse outcome: %w", row.ID, err)
	}
	return core.Run{
		ID:        row.ID,
		Source:    row.Source,
		Policy:    row.Policy,
		StartedAt: started,
		Rows:      int(row.RowCount),
		Totals:    core.Totals{Income: income, Outcome: outcome},
	}, nil
}

func toSummary(row CategoryRow) (core.CategorySummary, error) {
	outcome, err := decimal.NewFromString(row.Outcome)
	if err != nil {
		return core.CategorySummary{}, fmt.Errorf("category %q: parse outcome: %w", row.Category, err)
	}
	income, err := decimal.NewFromString(row.Income)
	if err != nil {
		return core.CategorySummary{}, fmt.Errorf("category %q: parse income: %w", row.Category, err)
	}
	return core.CategorySummary{Category: row.Category, Outcome: outcome, Income: income}, nil
}
