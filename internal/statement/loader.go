// Package statement reads the bank's transaction export.
//
// The export starts with a few lines of account preamble, then a header row,
// then one row per transaction. It may be prefixed with a UTF-8 byte order mark.
package statement

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bankpivot/internal/core"
	"bankpivot/internal/gcs"
)

// Required column names.
const (
	ColumnOutcome  = "outcome"
	ColumnIncome   = "income"
	ColumnCategory = "categoryName"
)

// DefaultSkipRows is the preamble length of the bank export.
const DefaultSkipRows = 3

var (
	ErrNoHeader      = errors.New("statement has no header row")
	ErrMissingColumn = errors.New("statement is missing a required column")
)

// Options controls how the export is read.
type Options struct {
	SkipRows int  // physical lines before the header
	Comma    rune // field delimiter, ',' when zero
}

// DefaultOptions matches the bank export.
func DefaultOptions() Options {
	return Options{SkipRows: DefaultSkipRows, Comma: ','}
}

// Load reads every transaction from r. Money and category cells are returned
// raw; normalization is left to the caller.
func Load(r io.Reader, opts Options) ([]core.Transaction, error) {
	if opts.SkipRows < 0 {
		return nil, fmt.Errorf("skip rows must not be negative: %d", opts.SkipRows)
	}

	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: input ended after %d preamble lines", ErrNoHeader, i)
			}
			return nil, fmt.Errorf("skip preamble line %d: %w", i+1, err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1 // short rows leave trailing cells missing
	cr.LazyQuotes = true    // a stray quote inside a cell is kept literally
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", physicalLine(err, opts.SkipRows))
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var txs []core.Transaction
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read statement: %w", physicalLine(err, opts.SkipRows))
		}
		line, _ := cr.FieldPos(0)
		txs = append(txs, core.Transaction{
			Line:         line + opts.SkipRows,
			Outcome:      cell(record, cols.outcome),
			Income:       cell(record, cols.income),
			CategoryName: cell(record, cols.category),
		})
	}
	return txs, nil
}

// physicalLine shifts csv parse positions past the skipped preamble so they
// point at lines of the original file.
func physicalLine(err error, skipped int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		shifted := *pe
		shifted.StartLine += skipped
		shifted.Line += skipped
		return &shifted
	}
	return err
}

type columns struct {
	outcome, income, category int
}

func locateColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	cols := columns{
		outcome:  lookup(ColumnOutcome),
		income:   lookup(ColumnIncome),
		category: lookup(ColumnCategory),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	return cols, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// Open returns a reader for a local path or a gs://bucket/object URI.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if gcs.IsURI(location) {
		return gcs.Fetch(ctx, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	return f, nil
}
