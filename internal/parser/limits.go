package parser

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	defaultMaxItems         = 15
	defaultMaxPackageWeight = 100
	defaultMaxItemWeight    = 100
	defaultMaxItemCost      = 100
)

const (
	// MaxItemsCeiling is the largest accepted MaxItems.
	MaxItemsCeiling = 64
	// MaxPackageWeightCeiling is the largest accepted MaxPackageWeight. The
	// optimizer allocates a row of up to this width per item.
	MaxPackageWeightCeiling = 10000
)

// Limits bounds the values accepted on a package line. Lower bounds are
// exclusive zero, upper bounds inclusive.
type Limits struct {
	MaxItems         int             `json:"maxItems"`
	MaxPackageWeight int             `json:"maxPackageWeight"`
	MaxItemWeight    decimal.Decimal `json:"maxItemWeight"`
	MaxItemCost      decimal.Decimal `json:"maxItemCost"`
}

// DefaultLimits returns the standard bounds: 15 items, package weight up to
// 100 and item weight and cost up to 100.
func DefaultLimits() Limits {
	return Limits{
		MaxItems:         defaultMaxItems,
		MaxPackageWeight: defaultMaxPackageWeight,
		MaxItemWeight:    decimal.NewFromInt(defaultMaxItemWeight),
		MaxItemCost:      decimal.NewFromInt(defaultMaxItemCost),
	}
}

// Validate checks that every bound is positive and that the item count and
// package weight stay within MaxItemsCeiling and MaxPackageWeightCeiling.
func (l Limits) Validate() error {
	if l.MaxItems <= 0 || l.MaxItems > MaxItemsCeiling {
		return fmt.Errorf("%w: max items %d (allowed 1..%d)", ErrInvalidLimits, l.MaxItems, MaxItemsCeiling)
	}
	if l.MaxPackageWeight <= 0 || l.MaxPackageWeight > MaxPackageWeightCeiling {
		return fmt.Errorf("%w: max package weight %d (allowed 1..%d)", ErrInvalidLimits, l.MaxPackageWeight, MaxPackageWeightCeiling)
	}
	if !l.MaxItemWeight.IsPositive() {
		return fmt.Errorf("%w: max item weight %s", ErrInvalidLimits, l.MaxItemWeight)
	}
	if !l.MaxItemCost.IsPositive() {
		return fmt.Errorf("%w: max item cost %s", ErrInvalidLimits, l.MaxItemCost)
	}
	return nil
}
