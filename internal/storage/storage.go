package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/packer/internal/parser"
)

var (
	// ErrInvalidLimits indicates the provided limits violate validation rules.
	ErrInvalidLimits = errors.New("invalid validation limits")
)

// Storage provides access to the validation limits applied to package lines.
type Storage interface {
	GetLimits() (parser.Limits, error)
	SetLimits(limits parser.Limits) error
}

// MemoryStorage keeps limits in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	limits parser.Limits
}

// NewMemoryStorage initialises storage with the default limits.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		limits: parser.DefaultLimits(),
	}
}

// GetLimits returns the currently configured limits.
func (s *MemoryStorage) GetLimits() (parser.Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.limits, nil
}

// SetLimits validates and stores the provided limits.
func (s *MemoryStorage) SetLimits(limits parser.Limits) error {
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLimits, err)
	}

	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()

	return nil
}
