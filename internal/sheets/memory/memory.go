package memory

import (
	"context"
	"fmt"
	"sync"

	"bankpivot/internal/sheets"
)

// Store keeps written grids in memory, keyed by sheet name.
type Store struct {
	mu     sync.Mutex
	grids  map[string][][]string
	writes int
}

var _ sheets.GridWriter = (*Store)(nil)

func New() *Store {
	return &Store{grids: map[string][][]string{}}
}

// WriteGrid replaces the sheet content and returns a synthetic range reference.
func (s *Store) WriteGrid(ctx context.Context, sheet string, rows [][]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sheet == "" {
		return "", sheets.ErrNoSheet
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = append([]string(nil), row...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids[sheet] = grid
	s.writes++
	return fmt.Sprintf("mem:%s!A1:%dx%d", sheet, len(grid), width(grid)), nil
}

// Grid returns a copy of the last grid written to sheet.
func (s *Store) Grid(sheet string) ([][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.grids[sheet]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, true
}

// Writes returns how many grids were written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func width(rows [][]string) int {
	w := 0
	for _, row := range rows {
		w = max(w, len(row))
	}
	return w
}
