package report

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Workbook writes a two-sheet spreadsheet: grand totals and the category matrix.
type Workbook struct {
	Path string
	// Spacers inserts an empty column after every category column.
	Spacers bool
}

func (wb Workbook) Output() string { return wb.Path }

func (wb Workbook) Render(_ context.Context, r *Report) error {
	if err := r.Labels.Validate(); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	f, err := wb.build(r)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	err = writeFileAtomic(wb.Path, func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return fmt.Errorf("write workbook %s: %w", wb.Path, err)
	}
	return nil
}

func (wb Workbook) build(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	summary := r.Labels.SummarySheet
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeGrid(f, summary, toGrid(r.SummaryRows())); err != nil {
		return nil, err
	}

	categories := r.Labels.CategoriesSheet
	if _, err := f.NewSheet(categories); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", categories, err)
	}
	matrix := r.Matrix()
	if wb.Spacers {
		matrix = withSpacers(matrix)
	}
	if err := writeGrid(f, categories, toGrid(matrix)); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(summary, "A1", fmt.Sprintf("A%d", len(r.SummaryRows())), bold); err != nil {
		return nil, fmt.Errorf("style %s: %w", summary, err)
	}
	if last, err := excelize.ColumnNumberToName(max(len(matrix[0]), 1)); err == nil {
		if err := f.SetCellStyle(categories, "A1", last+"1", bold); err != nil {
			return nil, fmt.Errorf("style %s: %w", categories, err)
		}
	}

	ok = true
	return f, nil
}

// withSpacers inserts an empty column after every category column.
func withSpacers(matrix [][]string) [][]string {
	out := make([][]string, len(matrix))
	for i, row := range matrix {
		spaced := make([]string, 0, len(row)*2)
		spaced = append(spaced, row[0])
		for _, v := range row[1:] {
			spaced = append(spaced, v, "")
		}
		out[i] = spaced
	}
	return out
}

func toGrid(rows [][]string) [][]any {
	grid := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		grid[i] = cells
	}
	return grid
}

// writeGrid fills a sheet from A1 and sizes every column to its content.
func writeGrid(f *excelize.File, sheet string, grid [][]any) error {
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}

	for col, width := range columnWidths(grid) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("size %s column %s: %w", sheet, name, err)
		}
	}
	return nil
}

// columnWidths returns the longest cell per column plus two characters of padding.
// Cells that are not strings count as empty.
func columnWidths(grid [][]any) []float64 {
	var widths []float64
	for _, row := range grid {
		for j, v := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			s, _ := v.(string)
			if n := float64(utf8.RuneCountInString(s)); n > widths[j] {
				widths[j] = n
			}
		}
	}
	for j := range widths {
		widths[j] += 2
	}
	return widths
}
