// Package sheets publishes the category matrix to a spreadsheet service.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"bankpivot/internal/report"
)

// Ports for outbound adapters.
type (
	// GridWriter replaces the content of one sheet with rows, top-left at A1,
	// and returns a reference to the written range.
	GridWriter interface {
		WriteGrid(ctx context.Context, sheet string, rows [][]string) (ref string, err error)
	}
)

var ErrNoSheet = errors.New("sheet name is required")

// Sink renders a report's category matrix through a GridWriter.
type Sink struct {
	Writer GridWriter
	Sheet  string
	ref    string
}

var _ report.Renderer = (*Sink)(nil)

func (s *Sink) Render(ctx context.Context, r *report.Report) error {
	sheet := s.Sheet
	if sheet == "" {
		sheet = r.Labels.CategoriesSheet
	}
	if sheet == "" {
		return ErrNoSheet
	}
	ref, err := s.Writer.WriteGrid(ctx, sheet, r.Matrix())
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}
	s.ref = ref
	return nil
}

// Reference returns the range written by the last successful Render.
func (s *Sink) Reference() string { return s.ref }
