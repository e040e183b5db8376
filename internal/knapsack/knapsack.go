package knapsack

import (
	"sort"

	"github.com/shopspring/decimal"
)

type dpOptimizer struct{}

// New creates an Optimizer based on dynamic programming over whole weight units.
func New() Optimizer {
	return &dpOptimizer{}
}

func (o *dpOptimizer) Solve(pkg Package) Selection {
	return o.Optimize(pkg.WeightLimit, pkg.Items)
}

func (o *dpOptimizer) Optimize(weightLimit int, items []Item) Selection {
	if weightLimit <= 0 || len(items) == 0 {
		return Selection{WeightLimit: weightLimit, Items: []Item{}}
	}

	candidates := fitting(weightLimit, items)
	width := tableWidth(weightLimit, candidates)
	dp := buildTable(width, candidates)
	selected := reconstruct(width, candidates, dp)

	sort.Slice(selected, func(a, b int) bool {
		return selected[a].Index < selected[b].Index
	})

	return Selection{WeightLimit: weightLimit, Items: selected}
}

// fitting drops items heavier than the limit, which can never be selected,
// and items with a negative weight, which cannot index the table.
func fitting(weightLimit int, items []Item) []Item {
	limit := decimal.NewFromInt(int64(weightLimit))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Weight.IsNegative() && item.Weight.LessThanOrEqual(limit) {
			out = append(out, item)
		}
	}
	return out
}

// tableWidth bounds the capacity axis by the rounded-up total item weight
// plus one. Columns past that bound repeat the same values.
func tableWidth(weightLimit int, items []Item) int {
	total := decimal.NewFromInt(1)
	for _, item := range items {
		total = total.Add(item.Weight.Ceil())
	}
	if total.LessThan(decimal.NewFromInt(int64(weightLimit))) {
		return int(total.IntPart())
	}
	return weightLimit
}

// buildTable fills dp[i][w] with the best cost reachable using the first i
// items and capacity w.
func buildTable(weightLimit int, items []Item) [][]decimal.Decimal {
	dp := make([][]decimal.Decimal, len(items)+1)
	for i := range dp {
		dp[i] = make([]decimal.Decimal, weightLimit+1)
	}

	for i := 1; i <= len(items); i++ {
		item := items[i-1]
		step := units(item)
		for w := 1; w <= weightLimit; w++ {
			skip := dp[i-1][w]
			if item.Weight.GreaterThan(decimal.NewFromInt(int64(w))) {
				dp[i][w] = skip
				continue
			}
			take := dp[i-1][w-step].Add(item.Cost)
			if take.GreaterThan(skip) {
				dp[i][w] = take
			} else {
				dp[i][w] = skip
			}
		}
	}

	return dp
}

func reconstruct(weightLimit int, items []Item, dp [][]decimal.Decimal) []Item {
	selected := make([]Item, 0, len(items))
	for i, w := len(items), weightLimit; i > 0 && w > 0; i-- {
		item := items[i-1]
		if !dp[i][w].Equal(dp[i-1][w]) || preferLighter(items, i, w, dp) {
			selected = append(selected, item)
			w -= units(item)
		}
	}
	return selected
}

// preferLighter keeps item i on a tie when it costs the same as the item
// before it in input order, weighs no more, and still fills cell (i, w)
// optimally.
func preferLighter(items []Item, i, w int, dp [][]decimal.Decimal) bool {
	if i < 2 {
		return false
	}

	current, previous := items[i-1], items[i-2]
	if !current.Cost.Equal(previous.Cost) || current.Weight.GreaterThan(previous.Weight) {
		return false
	}
	if current.Weight.GreaterThan(decimal.NewFromInt(int64(w))) {
		return false
	}

	return dp[i-1][w-units(current)].Add(current.Cost).Equal(dp[i][w])
}

// units truncates an item weight to whole capacity units for table indexing.
func units(item Item) int {
	return int(item.Weight.IntPart())
}
