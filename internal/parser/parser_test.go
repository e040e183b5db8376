package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/packer/internal/knapsack"
)

func TestParseValidLine(t *testing.T) {
	t.Parallel()

	line := "56 : (1,90.72,€13) (2,33.80,€40) (3,43.15,€10) (4,37.97,€16) (5,46.81,€36) (6,48.77,€79) (7,81.80,€45) (8,19.36,€79) (9,6.76,€64)"

	pkg, err := New(DefaultLimits()).Parse(line)
	require.NoError(t, err)
	require.Equal(t, 56, pkg.WeightLimit)

	want := []struct {
		index  int
		weight string
		cost   string
	}{
		{1, "90.72", "13"},
		{2, "33.80", "40"},
		{3, "43.15", "10"},
		{4, "37.97", "16"},
		{5, "46.81", "36"},
		{6, "48.77", "79"},
		{7, "81.80", "45"},
		{8, "19.36", "79"},
		{9, "6.76", "64"},
	}
	require.Len(t, pkg.Items, len(want))
	for i, w := range want {
		got := pkg.Items[i]
		require.Equal(t, w.index, got.Index)
		require.True(t, got.Weight.Equal(decimal.RequireFromString(w.weight)), "item %d weight %s", w.index, got.Weight)
		require.True(t, got.Cost.Equal(decimal.RequireFromString(w.cost)), "item %d cost %s", w.index, got.Cost)
	}
}

func TestParseToleratesSpacing(t *testing.T) {
	t.Parallel()

	pkg, err := New(DefaultLimits()).Parse("8:(1,15.3,€34)(2,2,€7.5)  ")
	require.NoError(t, err)
	require.Equal(t, 8, pkg.WeightLimit)
	require.Len(t, pkg.Items, 2)
	require.True(t, pkg.Items[1].Cost.Equal(decimal.RequireFromString("7.5")))
}

func TestParseRejectsInvalidLines(t *testing.T) {
	t.Parallel()

	tooMany := "56 : (1,10.72,€13) (2,33.80,€40) (3,43.15,€10) (4,37.97,€16) (5,46.81,€36) (6,48.77,€79) (7,81.80,€45)" +
		" (8,19.36,€79) (9,6.76,€64) (10,10.72,€13) (11,33.80,€40) (12,15.15,€10) (13,37.97,€16) (14,46.81,€36)" +
		" (15,48.77,€79) (16,81.80,€45) (17,19.36,€79) (18,6.76,€64)"

	tests := []struct {
		name    string
		line    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "PackageWeightTooHigh",
			line:    "120 : (1,50.72,€13) (2,33.80,€40)",
			wantErr: ErrInvalidPackageWeight,
			wantMsg: "invalid weight for package: 120",
		},
		{
			name:    "PackageWeightZero",
			line:    "0 : (1,50.72,€13)",
			wantErr: ErrInvalidPackageWeight,
			wantMsg: "invalid weight for package: 0",
		},
		{
			name:    "ItemWeightTooHigh",
			line:    "56 : (1,150.72,€13) (2,33.80,€40)",
			wantErr: ErrInvalidItemWeight,
			wantMsg: "invalid weight for item 1: 150.72",
		},
		{
			name:    "ItemWeightZero",
			line:    "56 : (1,10,€13) (2,0.00,€40)",
			wantErr: ErrInvalidItemWeight,
			wantMsg: "invalid weight for item 2: 0.00",
		},
		{
			name:    "ItemCostTooHigh",
			line:    "56 : (1,50.72,€130) (2,33.80,€40)",
			wantErr: ErrInvalidItemCost,
			wantMsg: "invalid cost for item 1: 130",
		},
		{
			name:    "ItemCostZero",
			line:    "56 : (1,50.72,€0)",
			wantErr: ErrInvalidItemCost,
			wantMsg: "invalid cost for item 1: 0",
		},
		{
			name:    "TooManyItems",
			line:    tooMany,
			wantErr: ErrInvalidFormat,
			wantMsg: "invalid line format or too many items (maximum allowed is 15): " + tooMany,
		},
		{
			name:    "MissingCurrency",
			line:    "56 : (1,50.72,13)",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "MissingItems",
			line:    "56 :",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "Blank",
			line:    "",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "NegativeWeight",
			line:    "56 : (1,-5,€13)",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "PackageWeightOverflow",
			line:    "99999999999999999999999 : (1,5,€13)",
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "ZeroIndex",
			line:    "56 : (0,5,€13)",
			wantErr: ErrInvalidItemIndex,
		},
		{
			name:    "DuplicateIndex",
			line:    "56 : (1,5,€13) (1,6,€14)",
			wantErr: ErrInvalidItemIndex,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(DefaultLimits()).Parse(tc.line)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				require.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestParseValidatesPackageBeforeItems(t *testing.T) {
	t.Parallel()

	_, err := New(DefaultLimits()).Parse("120 : (1,150.72,€130)")
	require.ErrorIs(t, err, ErrInvalidPackageWeight)
}

func TestParseValidatesItemsInOrder(t *testing.T) {
	t.Parallel()

	_, err := New(DefaultLimits()).Parse("50 : (1,10,€10) (2,150,€150) (3,10,€500)")
	require.ErrorIs(t, err, ErrInvalidItemWeight)
	require.Equal(t, "invalid weight for item 2: 150", err.Error())
}

func TestParseHonoursCustomLimits(t *testing.T) {
	t.Parallel()

	limits := Limits{
		MaxItems:         2,
		MaxPackageWeight: 20,
		MaxItemWeight:    decimal.NewFromInt(10),
		MaxItemCost:      decimal.NewFromInt(50),
	}
	p := New(limits)
	require.Equal(t, limits, p.Limits())

	_, err := p.Parse("20 : (1,5,€10) (2,5,€10) (3,5,€10)")
	require.ErrorIs(t, err, ErrInvalidFormat)
	require.True(t, strings.Contains(err.Error(), "maximum allowed is 2"))

	_, err = p.Parse("21 : (1,5,€10)")
	require.ErrorIs(t, err, ErrInvalidPackageWeight)

	_, err = p.Parse("20 : (1,10.5,€10)")
	require.ErrorIs(t, err, ErrInvalidItemWeight)

	_, err = p.Parse("20 : (1,10,€51)")
	require.ErrorIs(t, err, ErrInvalidItemCost)

	pkg, err := p.Parse("20 : (1,10,€50) (2,0.01,€0.01)")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, knapsack.Selection{Items: pkg.Items}.Indices())
}

func TestLimitsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultLimits().Validate())

	mutations := map[string]func(*Limits){
		"MaxItems":         func(l *Limits) { l.MaxItems = 0 },
		"MaxPackageWeight": func(l *Limits) { l.MaxPackageWeight = -1 },
		"MaxItemWeight":    func(l *Limits) { l.MaxItemWeight = decimal.Zero },
		"MaxItemCost":      func(l *Limits) { l.MaxItemCost = decimal.NewFromInt(-3) },
		"MaxItemsCeiling":  func(l *Limits) { l.MaxItems = MaxItemsCeiling + 1 },
		"MaxWeightCeiling": func(l *Limits) { l.MaxPackageWeight = math.MaxInt },
	}
	atCeiling := DefaultLimits()
	atCeiling.MaxItems = MaxItemsCeiling
	atCeiling.MaxPackageWeight = MaxPackageWeightCeiling
	require.NoError(t, atCeiling.Validate())

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			limits := DefaultLimits()
			mutate(&limits)
			require.ErrorIs(t, limits.Validate(), ErrInvalidLimits)
		})
	}
}

func TestReason(t *testing.T) {
	t.Parallel()

	p := New(DefaultLimits())
	cases := []struct {
		line string
		want string
	}{
		{"bad", "format"},
		{"120 : (1,5,€5)", "package_weight"},
		{"50 : (1,500,€5)", "item_weight"},
		{"50 : (1,5,€500)", "item_cost"},
		{"50 : (1,5,€5) (1,5,€5)", "item_index"},
		{"99999999999999999999999 : (1,5,€5)", "number"},
	}
	for _, tc := range cases {
		_, err := p.Parse(tc.line)
		require.Equal(t, tc.want, Reason(err), tc.line)
	}

	require.Equal(t, "", Reason(nil))
	require.Equal(t, "other", Reason(errors.New("boom")))
}
