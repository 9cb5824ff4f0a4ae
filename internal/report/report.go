// Package report renders an aggregated statement to its output sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bankpivot/internal/core"
	"bankpivot/internal/pivot"
)

// Ports for outbound renderers.
type (
	// Renderer writes a finished report to one sink.
	Renderer interface {
		Render(ctx context.Context, r *Report) error
	}

	// FileRenderer is a renderer producing a local file that can be published.
	FileRenderer interface {
		Renderer
		Output() string
	}
)

// Labels are the captions used by every sink.
type Labels struct {
	Income          string
	Outcome         string
	Total           string
	Balance         string
	SummarySheet    string
	CategoriesSheet string
	CategoryHeader  string
}

// DefaultLabels returns the Russian captions of the original report.
func DefaultLabels() Labels {
	return Labels{
		Income:          "Доходы",
		Outcome:         "Расходы",
		Total:           "Итого",
		Balance:         "Баланс",
		SummarySheet:    "Итоги",
		CategoriesSheet: "Категории",
		CategoryHeader:  "categoryName",
	}
}

// Merge returns l with every non-empty field of o applied.
func (l Labels) Merge(o Labels) Labels {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}
	return Labels{
		Income:          pick(l.Income, o.Income),
		Outcome:         pick(l.Outcome, o.Outcome),
		Total:           pick(l.Total, o.Total),
		Balance:         pick(l.Balance, o.Balance),
		SummarySheet:    pick(l.SummarySheet, o.SummarySheet),
		CategoriesSheet: pick(l.CategoriesSheet, o.CategoriesSheet),
		CategoryHeader:  pick(l.CategoryHeader, o.CategoryHeader),
	}
}

// ErrSheetNameClash is returned when both workbook sheets share a name.
var ErrSheetNameClash = errors.New("summary and categories sheets must have different names")

// Validate checks the labels can name two distinct workbook sheets. Sheet
// names compare case-insensitively, as in spreadsheet applications.
func (l Labels) Validate() error {
	if strings.EqualFold(strings.TrimSpace(l.SummarySheet), strings.TrimSpace(l.CategoriesSheet)) {
		return fmt.Errorf("%w: %q", ErrSheetNameClash, l.SummarySheet)
	}
	return nil
}

// Report is the aggregated statement handed to the renderers.
type Report struct {
	Source string
	Policy string
	// Columns are the category buckets in display order.
	Columns []core.CategorySummary
	// Table is the full pivot, including categories hidden by the policy.
	Table  *pivot.Table
	Labels Labels
}

// Totals returns the global sums of the statement.
func (r *Report) Totals() core.Totals {
	return r.Table.Totals
}

// ByMovement returns every category of the statement, largest total first.
func (r *Report) ByMovement() []core.CategorySummary {
	return pivot.DynamicOrder{}.Apply(r.Table)
}

// Matrix returns the category-by-metric grid: a header row of category names,
// then the Income, Outcome and Total rows as money strings.
func (r *Report) Matrix() [][]string {
	header := make([]string, 0, len(r.Columns)+1)
	income := []string{r.Labels.Income}
	outcome := []string{r.Labels.Outcome}
	total := []string{r.Labels.Total}

	header = append(header, "")
	for _, c := range r.Columns {
		header = append(header, c.Category)
		income = append(income, core.FormatMoney(c.Income))
		outcome = append(outcome, core.FormatMoney(c.Outcome))
		total = append(total, core.FormatMoney(c.Total()))
	}
	return [][]string{header, income, outcome, total}
}

// SummaryRows returns the grand totals as label/value pairs.
func (r *Report) SummaryRows() [][]string {
	t := r.Totals()
	return [][]string{
		{r.Labels.Income, core.FormatMoney(t.Income)},
		{r.Labels.Outcome, core.FormatMoney(t.Outcome)},
		{r.Labels.Total, core.FormatMoney(t.Income.Add(t.Outcome))},
		{r.Labels.Balance, core.FormatMoney(t.Balance())},
	}
}
