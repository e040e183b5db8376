// Package metrics records packing activity. The Prometheus collector follows
// the registerer/namespace convention; Nop discards everything.
package metrics

import "time"

// Recorder receives packing events.
type Recorder interface {
	// PackageSolved records one optimised package.
	PackageSolved(items, selected int, elapsed time.Duration)
	// ValidationFailed records a rejected line, labelled by reason.
	ValidationFailed(reason string)
	// CacheLookup records a selection cache lookup.
	CacheLookup(hit bool)
}

// Nop is a Recorder that drops every event.
type Nop struct{}

var _ Recorder = Nop{}

// NewNop returns a Recorder that does nothing.
func NewNop() Nop {
	return Nop{}
}

func (Nop) PackageSolved(int, int, time.Duration) {}

func (Nop) ValidationFailed(string) {}

func (Nop) CacheLookup(bool) {}
