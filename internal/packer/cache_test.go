package packer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/packer/internal/knapsack"
)

func TestCachedOptimizerReusesSelections(t *testing.T) {
	t.Parallel()

	inner := &countingOptimizer{next: knapsack.New()}
	rec := &recordingMetrics{}
	opt, err := NewCachedOptimizer(inner, 8, rec)
	require.NoError(t, err)

	p := New(WithOptimizer(opt))
	input := "81 : (1,53.38,€45) (2,88.62,€98) (3,78.48,€3) (4,72.30,€76) (5,30.18,€9) (6,46.34,€48)\n" +
		"81 : (1,53.38,€45) (2,88.62,€98) (3,78.48,€3) (4,72.30,€76) (5,30.18,€9) (6,46.34,€48)\n" +
		"8 : (1,15.3,€34)"

	selections, err := p.PackText(input)
	require.NoError(t, err)
	require.Equal(t, "4\n4\n-", Render(selections))
	require.Equal(t, 2, inner.calls)
	require.Equal(t, 1, rec.hits)
	require.Equal(t, 2, rec.misses)
}

func TestCachedOptimizerReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	opt, err := NewCachedOptimizer(knapsack.New(), 2, nil)
	require.NoError(t, err)

	pkg := knapsack.Package{WeightLimit: 10, Items: []knapsack.Item{
		{Index: 1, Weight: decimalOf(t, "4"), Cost: decimalOf(t, "7")},
	}}

	first := opt.Solve(pkg)
	first.Items[0].Index = 99

	second := opt.Optimize(pkg.WeightLimit, pkg.Items)
	require.Equal(t, []int{1}, second.Indices())
}

func TestNewCachedOptimizerRejectsInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewCachedOptimizer(knapsack.New(), 0, nil)
	require.Error(t, err)
}
