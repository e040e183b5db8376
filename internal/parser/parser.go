package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/packer/internal/knapsack"
)

var (
	linePattern = regexp.MustCompile(`^(\d+)\s*:\s*((?:\(\d+,\d+(?:\.\d+)?,€\d+(?:\.\d+)?\)\s*)+)$`)
	itemPattern = regexp.MustCompile(`\((\d+),(\d+(?:\.\d+)?),€(\d+(?:\.\d+)?)\)`)
)

const (
	lineWeightGroup = 1
	lineItemsGroup  = 2

	itemIndexGroup  = 1
	itemWeightGroup = 2
	itemCostGroup   = 3
)

// Parser turns package lines into validated knapsack packages.
type Parser struct {
	limits Limits
}

// New creates a Parser enforcing the provided limits.
func New(limits Limits) *Parser {
	return &Parser{limits: limits}
}

// Limits returns the bounds enforced by the parser.
func (p *Parser) Limits() Limits {
	return p.limits
}

// Parse reads a line of the form
//
//	<weightLimit> : (<index>,<weight>,€<cost>) (<index>,<weight>,€<cost>) ...
//
// and validates the package weight, then every item in order.
func (p *Parser) Parse(line string) (knapsack.Package, error) {
	match := linePattern.FindStringSubmatch(line)
	if match == nil {
		return knapsack.Package{}, p.formatError(line)
	}

	itemMatches := itemPattern.FindAllStringSubmatch(match[lineItemsGroup], -1)
	if len(itemMatches) > p.limits.MaxItems {
		return knapsack.Package{}, p.formatError(line)
	}

	weightLimit, err := p.parseWeightLimit(match[lineWeightGroup])
	if err != nil {
		return knapsack.Package{}, err
	}

	items := make([]knapsack.Item, 0, len(itemMatches))
	seen := make(map[int]struct{}, len(itemMatches))
	for _, m := range itemMatches {
		item, err := p.parseItem(m)
		if err != nil {
			return knapsack.Package{}, err
		}
		if _, dup := seen[item.Index]; dup {
			return knapsack.Package{}, fmt.Errorf("%w: %d is repeated", ErrInvalidItemIndex, item.Index)
		}
		seen[item.Index] = struct{}{}
		items = append(items, item)
	}

	return knapsack.Package{WeightLimit: weightLimit, Items: items}, nil
}

func (p *Parser) formatError(line string) error {
	return fmt.Errorf("%w (maximum allowed is %d): %s", ErrInvalidFormat, p.limits.MaxItems, line)
}

func (p *Parser) parseWeightLimit(raw string) (int, error) {
	weight, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: package weight %q", ErrInvalidNumber, raw)
	}
	if weight <= 0 || weight > p.limits.MaxPackageWeight {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPackageWeight, weight)
	}
	return weight, nil
}

func (p *Parser) parseItem(m []string) (knapsack.Item, error) {
	rawIndex, rawWeight, rawCost := m[itemIndexGroup], m[itemWeightGroup], m[itemCostGroup]

	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return knapsack.Item{}, fmt.Errorf("%w: item index %q", ErrInvalidNumber, rawIndex)
	}
	if index <= 0 {
		return knapsack.Item{}, fmt.Errorf("%w: %d", ErrInvalidItemIndex, index)
	}

	weight, err := decimal.NewFromString(rawWeight)
	if err != nil {
		return knapsack.Item{}, fmt.Errorf("%w: weight %q for item %d", ErrInvalidNumber, rawWeight, index)
	}
	if !weight.IsPositive() || weight.GreaterThan(p.limits.MaxItemWeight) {
		return knapsack.Item{}, fmt.Errorf("%w %d: %s", ErrInvalidItemWeight, index, rawWeight)
	}

	cost, err := decimal.NewFromString(rawCost)
	if err != nil {
		return knapsack.Item{}, fmt.Errorf("%w: cost %q for item %d", ErrInvalidNumber, rawCost, index)
	}
	if !cost.IsPositive() || cost.GreaterThan(p.limits.MaxItemCost) {
		return knapsack.Item{}, fmt.Errorf("%w %d: %s", ErrInvalidItemCost, index, rawCost)
	}

	return knapsack.Item{Index: index, Weight: weight, Cost: cost}, nil
}
