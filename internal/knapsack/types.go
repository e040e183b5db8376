package knapsack

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is a candidate good identified by its 1-based index within a package.
type Item struct {
	Index  int
	Weight decimal.Decimal
	Cost   decimal.Decimal
}

// Package is a single optimisation problem: a weight limit and the candidate
// items in input order.
type Package struct {
	WeightLimit int
	Items       []Item
}

// Selection is the subset of items chosen for a package, sorted ascending by
// index.
type Selection struct {
	WeightLimit int
	Items       []Item
}

// Optimizer describes the behaviour required from a package optimizer.
type Optimizer interface {
	Optimize(weightLimit int, items []Item) Selection
	Solve(pkg Package) Selection
}

// Indices returns the indices of the selected items in ascending order.
func (s Selection) Indices() []int {
	out := make([]int, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item.Index)
	}
	return out
}

// TotalWeight returns the exact sum of the selected weights.
func (s Selection) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Weight)
	}
	return total
}

// TotalCost returns the exact sum of the selected costs.
func (s Selection) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Cost)
	}
	return total
}

// Empty reports whether no item was selected.
func (s Selection) Empty() bool {
	return len(s.Items) == 0
}

// String renders the selection as comma-separated indices, or "-" when empty.
func (s Selection) String() string {
	if s.Empty() {
		return "-"
	}

	parts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		parts = append(parts, strconv.Itoa(item.Index))
	}
	return strings.Join(parts, ",")
}

// Key returns a canonical text form of the package, suitable for caching.
func (p Package) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.WeightLimit))
	b.WriteString(" :")
	for _, item := range p.Items {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(item.Index))
		b.WriteByte(',')
		b.WriteString(item.Weight.String())
		b.WriteByte(',')
		b.WriteString(item.Cost.String())
		b.WriteByte(')')
	}
	return b.String()
}
