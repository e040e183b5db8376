package packer

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/eugenenazirov/packer/internal/knapsack"
	"github.com/eugenenazirov/packer/internal/metrics"
)

// cachedOptimizer memoises selections by canonical package text.
type cachedOptimizer struct {
	next    knapsack.Optimizer
	cache   *lru.Cache[string, knapsack.Selection]
	metrics metrics.Recorder
}

// NewCachedOptimizer wraps next with an LRU cache holding up to size
// selections. The optimizer is deterministic, so a cached selection is
// identical to a recomputed one.
func NewCachedOptimizer(next knapsack.Optimizer, size int, recorder metrics.Recorder) (knapsack.Optimizer, error) {
	cache, err := lru.New[string, knapsack.Selection](size)
	if err != nil {
		return nil, fmt.Errorf("create selection cache: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &cachedOptimizer{next: next, cache: cache, metrics: recorder}, nil
}

func (c *cachedOptimizer) Solve(pkg knapsack.Package) knapsack.Selection {
	key := pkg.Key()
	if selection, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookup(true)
		return clone(selection)
	}
	c.metrics.CacheLookup(false)

	selection := c.next.Solve(pkg)
	c.cache.Add(key, clone(selection))
	return selection
}

func (c *cachedOptimizer) Optimize(weightLimit int, items []knapsack.Item) knapsack.Selection {
	return c.Solve(knapsack.Package{WeightLimit: weightLimit, Items: items})
}

func clone(s knapsack.Selection) knapsack.Selection {
	return knapsack.Selection{WeightLimit: s.WeightLimit, Items: slices.Clone(s.Items)}
}
