package pivot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bankpivot/internal/core"
)

const (
	PolicyDynamic = "dynamic"
	PolicyFixed   = "fixed"
)

var ErrUnknownPolicy = errors.New("unknown ordering policy")

// Policy decides which category columns are shown and in which order.
type Policy interface {
	Name() string
	Apply(t *Table) []core.CategorySummary
}

// DynamicOrder shows every category, largest money movement first.
// Equal totals keep the table's group order.
type DynamicOrder struct{}

func (DynamicOrder) Name() string { return PolicyDynamic }

func (DynamicOrder) Apply(t *Table) []core.CategorySummary {
	out := append([]core.CategorySummary(nil), t.Rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total().GreaterThan(out[j].Total())
	})
	return out
}

// FixedOrder shows exactly the listed categories, in list order.
// Listed categories absent from the data appear with zero sums; categories not
// listed are left out of the columns but still count in the table totals.
type FixedOrder struct {
	Categories []string
}

func (FixedOrder) Name() string { return PolicyFixed }

func (p FixedOrder) Apply(t *Table) []core.CategorySummary {
	seen := make(map[string]struct{}, len(p.Categories))
	out := make([]core.CategorySummary, 0, len(p.Categories))
	for _, name := range p.Categories {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if s, ok := t.Lookup(name); ok {
			out = append(out, s)
			continue
		}
		out = append(out, core.ZeroSummary(name))
	}
	return out
}

// Dropped lists the categories present in t that the fixed order hides.
func (p FixedOrder) Dropped(t *Table) []string {
	listed := make(map[string]struct{}, len(p.Categories))
	for _, name := range p.Categories {
		listed[name] = struct{}{}
	}
	var out []string
	for _, r := range t.Rows {
		if _, ok := listed[r.Category]; !ok {
			out = append(out, r.Category)
		}
	}
	return out
}

// ParsePolicy builds a policy from its configured name.
func ParsePolicy(name string, fixed []string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyDynamic:
		return DynamicOrder{}, nil
	case PolicyFixed:
		if len(fixed) == 0 {
			return nil, fmt.Errorf("%w: fixed order needs at least one category", ErrUnknownPolicy)
		}
		return FixedOrder{Categories: append([]string(nil), fixed...)}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be one of [%s %s])", ErrUnknownPolicy, name, PolicyDynamic, PolicyFixed)
	}
}
