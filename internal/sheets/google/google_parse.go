package google

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// toValues converts a string grid to the value matrix the Sheets API expects.
func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// quoteSheet returns the sheet name as used in A1 notation. Names made of
// anything but ASCII letters, digits and underscores must be single-quoted,
// with embedded quotes doubled.
func quoteSheet(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// rangeRef returns the A1 range covered by rows written at A1.
func rangeRef(sheet string, rows [][]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 || len(rows) == 0 {
		return quoteSheet(sheet) + "!A1"
	}
	last, err := excelize.CoordinatesToCellName(width, len(rows))
	if err != nil {
		return quoteSheet(sheet) + "!A1"
	}
	return fmt.Sprintf("%s!A1:%s", quoteSheet(sheet), last)
}
