package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"bankpivot/internal/core"
)

// Console prints a human-readable summary.
type Console struct {
	W io.Writer
}

var (
	titleColor   = color.New(color.Bold)
	incomeColor  = color.New(color.FgGreen)
	outcomeColor = color.New(color.FgRed)
)

func (c Console) Render(_ context.Context, r *Report) error {
	l := r.Labels
	titleColor.Fprintf(c.W, "\nCategory summary: %s (order: %s)\n", r.Source, r.Policy)
	fmt.Fprintln(c.W, strings.Repeat("=", 80))

	tw := tabwriter.NewWriter(c.W, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", l.CategoryHeader, l.Outcome, l.Income, l.Total)
	for _, s := range r.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			s.Category,
			core.FormatMoney(s.Outcome),
			core.FormatMoney(s.Income),
			core.FormatMoney(s.Total()))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	t := r.Totals()
	fmt.Fprintln(c.W, strings.Repeat("-", 80))
	incomeColor.Fprintf(c.W, "%s: %s\n", l.Income, core.FormatMoney(t.Income))
	outcomeColor.Fprintf(c.W, "%s: %s\n", l.Outcome, core.FormatMoney(t.Outcome))

	balance := incomeColor
	if t.Balance().IsNegative() {
		balance = outcomeColor
	}
	_, err := balance.Fprintf(c.W, "%s: %s\n", l.Balance, core.FormatMoney(t.Balance()))
	return err
}

// WriteHistory prints archived runs, most recent first, one per line.
func WriteHistory(w io.Writer, runs []core.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No archived runs")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN\tSTARTED\tSOURCE\tORDER\tROWS\tINCOME\tOUTCOME\tBALANCE\t\n")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.Policy,
			run.Rows,
			core.FormatMoney(run.Totals.Income),
			core.FormatMoney(run.Totals.Outcome),
			core.FormatMoney(run.Totals.Balance()))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}
