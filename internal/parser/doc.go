// Package parser reads the package text format and validates package weight
// limits, item weights, item costs and item counts against configurable Limits.
package parser
