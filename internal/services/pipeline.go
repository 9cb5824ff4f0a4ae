// Package services wires the statement loader, the category rules, the pivot
// and the report sinks into one run.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bankpivot/internal/core"
	"bankpivot/internal/log"
	"bankpivot/internal/pivot"
	"bankpivot/internal/report"
	"bankpivot/internal/rules"
	"bankpivot/internal/statement"
)

// Pipeline turns a statement export into an aggregated report. It prints
// nothing; rendering is left to the caller.
type Pipeline struct {
	Normalizer *rules.Normalizer
	Parser     core.MoneyParser
	Policy     pivot.Policy
	Labels     report.Labels
	Logger     *log.Logger
}

// NewPipeline builds a pipeline from a rule profile and an ordering policy name.
func NewPipeline(profile rules.Profile, policy string, logger *log.Logger) (*Pipeline, error) {
	normalizer, err := rules.Compile(profile.Rules)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	pol, err := pivot.ParsePolicy(policy, profile.Order)
	if err != nil {
		return nil, err
	}
	l := profile.Labels
	labels := report.DefaultLabels().Merge(report.Labels{
		Income:          l.Income,
		Outcome:         l.Outcome,
		Total:           l.Total,
		SummarySheet:    l.SummarySheet,
		CategoriesSheet: l.CategoriesSheet,
	})
	if err := labels.Validate(); err != nil {
		return nil, fmt.Errorf("profile labels: %w", err)
	}
	return &Pipeline{
		Normalizer: normalizer,
		Parser:     core.DefaultMoneyParser,
		Policy:     pol,
		Labels:     labels,
		Logger:     logger,
	}, nil
}

// Run loads every transaction from r, parses the money cells, normalizes the
// categories, aggregates them and applies the ordering policy.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, source string, opts statement.Options) (*report.Report, error) {
	logger := p.logger(ctx)
	start := time.Now()

	txs, err := statement.Load(r, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.WithComponent(log.ComponentLoader).DebugContext(ctx, "Statement loaded",
		log.NewFields().
			WithOperation(log.OpLoad).
			With(log.FieldSource, source).
			With(log.FieldRows, len(txs)).
			ToSlice()...)

	for i := range txs {
		tx := &txs[i]
		tx.OutcomeAmount = p.Parser.Parse(tx.Outcome)
		tx.IncomeAmount = p.Parser.Parse(tx.Income)
		tx.Category = p.Normalizer.Normalize(tx.CategoryName, tx.IncomeAmount)
	}
	hits, misses := p.Normalizer.CacheStats()
	logger.WithComponent(log.ComponentRules).DebugContext(ctx, "Categories normalized",
		log.NewFields().
			WithOperation(log.OpNormalize).
			With(log.FieldCacheHits, hits).
			With(log.FieldCacheMiss, misses).
			ToSlice()...)

	table := pivot.Aggregate(txs)
	columns := p.Policy.Apply(table)

	pivotLogger := logger.WithComponent(log.ComponentPivot)
	if fixed, ok := p.Policy.(pivot.FixedOrder); ok {
		if dropped := fixed.Dropped(table); len(dropped) > 0 {
			pivotLogger.WarnContext(ctx, "Categories outside the fixed order are not displayed",
				log.FieldDropped, dropped)
		}
	}
	pivotLogger.InfoContext(ctx, "Statement aggregated",
		log.NewFields().
			WithOperation(log.OpAggregate).
			With(log.FieldPolicy, p.Policy.Name()).
			With(log.FieldCategories, len(columns)).
			WithDuration(time.Since(start)).
			WithTotals(core.FormatMoney(table.Totals.Income), core.FormatMoney(table.Totals.Outcome), core.FormatMoney(table.Totals.Balance())).
			ToSlice()...)

	return &report.Report{
		Source:  source,
		Policy:  p.Policy.Name(),
		Columns: columns,
		Table:   table,
		Labels:  p.Labels,
	}, nil
}

// RunFile runs the pipeline on a local path or gs:// URI.
func (p *Pipeline) RunFile(ctx context.Context, location string, opts statement.Options) (*report.Report, error) {
	rc, err := statement.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return p.Run(ctx, rc, location, opts)
}

func (p *Pipeline) logger(ctx context.Context) *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.FromContext(ctx)
}

// RenderAll writes the report to every renderer in order and returns the
// files produced. A chart with nothing to draw is skipped with a warning.
func RenderAll(ctx context.Context, rep *report.Report, logger *log.Logger, renderers ...report.Renderer) ([]string, error) {
	logger = logger.WithComponent(log.ComponentReport)
	var files []string
	for _, r := range renderers {
		output := ""
		fr, isFile := r.(report.FileRenderer)
		if isFile {
			output = fr.Output()
		}
		fields := log.NewFields().WithOperation(log.OpRender).WithSink(sinkName(r), output)

		err := r.Render(ctx, rep)
		if errors.Is(err, report.ErrNothingToChart) {
			logger.WarnContext(ctx, "Chart skipped", fields.WithError(err).ToSlice()...)
			continue
		}
		if err != nil {
			return files, err
		}
		if isFile {
			files = append(files, output)
			logger.InfoContext(ctx, "Report written", fields.ToSlice()...)
		}
	}
	return files, nil
}

func sinkName(r report.Renderer) string {
	switch r.(type) {
	case report.Console, *report.Console:
		return "console"
	case report.CSVFile, *report.CSVFile:
		return "csv"
	case report.Workbook, *report.Workbook:
		return "xlsx"
	case report.Chart, *report.Chart:
		return "chart"
	default:
		return fmt.Sprintf("%T", r)
	}
}
