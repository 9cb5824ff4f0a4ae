package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is one data row of the statement export.
	Transaction struct {
		Line int // 1-based source line, for diagnostics

		// Raw cells as exported. Missing cells are empty.
		Outcome      string
		Income       string
		CategoryName string

		// Filled by the normalizer.
		OutcomeAmount decimal.Decimal
		IncomeAmount  decimal.Decimal
		Category      string
	}

	// Totals are the global sums over every transaction of a run.
	Totals struct {
		Income  decimal.Decimal
		Outcome decimal.Decimal
	}

	// Run is a finished pipeline execution, as archived in the run history.
	Run struct {
		ID         string
		Source     string
		Policy     string
		StartedAt  time.Time
		Rows       int
		Totals     Totals
		Categories []CategorySummary
	}
)

var ErrEmptyRunID = errors.New("empty run id")

// Balance is income minus outcome.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Outcome)
}

// Add accumulates a transaction's parsed amounts.
func (t *Totals) Add(tx Transaction) {
	t.Income = t.Income.Add(tx.IncomeAmount)
	t.Outcome = t.Outcome.Add(tx.OutcomeAmount)
}

// Validate checks the run can be archived. Categories may be empty strings:
// statement rows without a category form their own bucket.
func (r Run) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyRunID
	}
	return nil
}
