// Package rules rewrites raw statement category labels into report categories.
//
// Rewrites are data: an ordered list of (pattern, replacement, condition)
// rules applied one after another, so a later rule sees the output of the
// earlier ones.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"bankpivot/internal/cache"
)

const (
	// Always applies the rule to every transaction.
	Always Condition = "always"
	// IncomeNonZero applies the rule only to transactions with income.
	IncomeNonZero Condition = "income_nonzero"
)

const memoSize = 4096

type (
	Condition string

	// Rule replaces every match of Match in the category with Replace.
	Rule struct {
		Name    string    `yaml:"name"`
		Match   string    `yaml:"match"`
		Replace string    `yaml:"replace"`
		When    Condition `yaml:"when"`
	}

	compiledRule struct {
		Rule
		re *regexp.Regexp
	}

	memoKey struct {
		raw    string
		income bool
	}

	// Normalizer applies a compiled rule list. It is safe for concurrent use.
	Normalizer struct {
		rules []compiledRule
		memo  *cache.LRU[memoKey, string]
	}
)

var ErrInvalidRule = errors.New("invalid category rule")

// Compile validates and compiles rules, preserving their order.
func Compile(rules []Rule) (*Normalizer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.When == "" {
			r.When = Always
		}
		if r.When != Always && r.When != IncomeNonZero {
			return nil, fmt.Errorf("%w: rule %d (%s): unknown condition %q", ErrInvalidRule, i, r.Name, r.When)
		}
		if strings.TrimSpace(r.Match) == "" {
			return nil, fmt.Errorf("%w: rule %d (%s): empty match", ErrInvalidRule, i, r.Name)
		}
		re, err := regexp.Compile(r.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, r.Name, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return &Normalizer{
		rules: compiled,
		memo:  cache.NewLRU[memoKey, string](memoSize),
	}, nil
}

// Normalize returns the report category for a raw label and the transaction's income.
func (n *Normalizer) Normalize(raw string, income decimal.Decimal) string {
	key := memoKey{raw: raw, income: !income.IsZero()}
	return n.memo.GetOrCompute(key, func() string {
		return n.apply(key.raw, key.income)
	})
}

func (n *Normalizer) apply(category string, hasIncome bool) string {
	for _, r := range n.rules {
		if r.When == IncomeNonZero && !hasIncome {
			continue
		}
		category = r.re.ReplaceAllLiteralString(category, r.Replace)
	}
	return category
}

// Rules returns a copy of the rule list in evaluation order.
func (n *Normalizer) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	for i, r := range n.rules {
		out[i] = r.Rule
	}
	return out
}

// CacheStats exposes memo hit/miss counters for logging.
func (n *Normalizer) CacheStats() (hits, misses int) {
	return n.memo.Stats()
}
