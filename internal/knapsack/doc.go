// Package knapsack selects, for a single package, the subset of items that
// maximises total cost without exceeding the package weight limit. Weights and
// costs are exact decimals; the table is indexed by whole capacity units.
package knapsack
