package parser

import (
	"errors"
)

var (
	// ErrInvalidFormat is returned when a line does not follow the package text format
	// or carries more items than allowed.
	ErrInvalidFormat = errors.New("invalid line format or too many items")
	// ErrInvalidNumber is returned when a numeric field cannot be represented.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidPackageWeight is returned when the package weight limit is out of range.
	ErrInvalidPackageWeight = errors.New("invalid weight for package")
	// ErrInvalidItemIndex is returned when an item index is zero or repeated within a line.
	ErrInvalidItemIndex = errors.New("invalid index for item")
	// ErrInvalidItemWeight is returned when an item weight is out of range.
	ErrInvalidItemWeight = errors.New("invalid weight for item")
	// ErrInvalidItemCost is returned when an item cost is out of range.
	ErrInvalidItemCost = errors.New("invalid cost for item")
	// ErrInvalidLimits is returned when a validation limit is not positive or
	// exceeds its ceiling.
	ErrInvalidLimits = errors.New("limits out of range")
)

// Reason maps a parse error onto a short label, used for metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidFormat):
		return "format"
	case errors.Is(err, ErrInvalidNumber):
		return "number"
	case errors.Is(err, ErrInvalidPackageWeight):
		return "package_weight"
	case errors.Is(err, ErrInvalidItemIndex):
		return "item_index"
	case errors.Is(err, ErrInvalidItemWeight):
		return "item_weight"
	case errors.Is(err, ErrInvalidItemCost):
		return "item_cost"
	default:
		return "other"
	}
}
