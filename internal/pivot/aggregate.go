// Package pivot groups normalized transactions by category and orders the
// resulting columns.
package pivot

import (
	"sort"

	"github.com/shopspring/decimal"

	"bankpivot/internal/core"
)

// Table is the category pivot of one statement.
type Table struct {
	// Rows holds one bucket per category present in the data, in ascending
	// category order.
	Rows []core.CategorySummary
	// Totals are computed over every transaction, before any column filtering.
	Totals core.Totals
	// Transactions is the number of aggregated rows.
	Transactions int
}

// Aggregate sums outcome and income per normalized category.
// Transactions must already carry parsed amounts and a normalized Category.
func Aggregate(txs []core.Transaction) *Table {
	byCat := map[string]*core.CategorySummary{}
	totals := core.Totals{Income: decimal.Zero, Outcome: decimal.Zero}

	for _, tx := range txs {
		s, ok := byCat[tx.Category]
		if !ok {
			zero := core.ZeroSummary(tx.Category)
			s = &zero
			byCat[tx.Category] = s
		}
		s.Outcome = s.Outcome.Add(tx.OutcomeAmount)
		s.Income = s.Income.Add(tx.IncomeAmount)
		totals.Add(tx)
	}

	rows := make([]core.CategorySummary, 0, len(byCat))
	for _, s := range byCat {
		rows = append(rows, *s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })

	return &Table{Rows: rows, Totals: totals, Transactions: len(txs)}
}

// Lookup returns the bucket for category.
func (t *Table) Lookup(category string) (core.CategorySummary, bool) {
	i := sort.Search(len(t.Rows), func(i int) bool { return t.Rows[i].Category >= category })
	if i < len(t.Rows) && t.Rows[i].Category == category {
		return t.Rows[i], true
	}
	return core.CategorySummary{}, false
}

// Categories lists the category keys in group order.
func (t *Table) Categories() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Category
	}
	return out
}
