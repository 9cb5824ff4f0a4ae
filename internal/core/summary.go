package core

import "github.com/shopspring/decimal"

// CategorySummary is one aggregated category bucket.
type CategorySummary struct {
	Category string
	Outcome  decimal.Decimal
	Income   decimal.Decimal
}

// Total is the money movement of the bucket: outcome plus income.
func (c CategorySummary) Total() decimal.Decimal {
	return c.Outcome.Add(c.Income)
}

// ZeroSummary returns an empty bucket for a category absent from the data.
func ZeroSummary(category string) CategorySummary {
	return CategorySummary{Category: category, Outcome: decimal.Zero, Income: decimal.Zero}
}
