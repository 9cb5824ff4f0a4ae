package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"bankpivot/internal/core"
)

const utf8BOM = "\uFEFF"

// CSVFile writes one row per category, largest money movement first,
// regardless of the configured column policy.
type CSVFile struct {
	Path string
}

func (c CSVFile) Output() string { return c.Path }

func (c CSVFile) Render(_ context.Context, r *Report) error {
	err := writeFileAtomic(c.Path, func(w io.Writer) error {
		// Spreadsheet apps need the BOM to detect UTF-8.
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{r.Labels.CategoryHeader, "outcome", "income", "total"}); err != nil {
			return err
		}
		for _, s := range r.ByMovement() {
			row := []string{s.Category, core.RoundCents(s.Outcome), core.RoundCents(s.Income), core.RoundCents(s.Total())}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("write csv %s: %w", c.Path, err)
	}
	return nil
}
