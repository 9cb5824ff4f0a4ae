package log

import "time"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldSource     = "source"
	FieldPolicy     = "policy"
	FieldRows       = "rows"
	FieldCategories = "categories"
	FieldDropped    = "dropped"
	FieldOutput     = "output"
	FieldSink       = "sink"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldIncome     = "income"
	FieldOutcome    = "outcome"
	FieldBalance    = "balance"
	FieldCacheHits  = "cache_hits"
	FieldCacheMiss  = "cache_misses"
	FieldTarget     = "target"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLoader  = "loader"
	ComponentRules   = "rules"
	ComponentPivot   = "pivot"
	ComponentReport  = "report"
	ComponentSheets  = "sheets"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentGCS     = "gcs"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpNormalize = "normalize"
	OpAggregate = "aggregate"
	OpRender    = "render"
	OpPublish   = "publish"
	OpUpload    = "upload"
	OpSave      = "save"
	OpMigrate   = "migrate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// With sets an arbitrary field.
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

func (f LogFields) WithRunID(id string) LogFields {
	f[FieldRunID] = id
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSink names the sink and the path or URI it produced.
func (f LogFields) WithSink(sink, output string) LogFields {
	f[FieldSink] = sink
	if output != "" {
		f[FieldOutput] = output
	}
	return f
}

// WithTotals adds the run totals as display strings.
func (f LogFields) WithTotals(income, outcome, balance string) LogFields {
	f[FieldIncome] = income
	f[FieldOutcome] = outcome
	f[FieldBalance] = balance
	return f
}

func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
