// Package packer orchestrates a packing run: it reads package lines, validates
// them with the parser, optimises every package and renders one output line per
// input line. A single invalid line fails the whole run.
package packer
