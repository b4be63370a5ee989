package domain

import (
	"fmt"
	"time"
)

// Space represents a shared knowledge space (a tenant) in the system
type Space struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewSpace creates a new Space instance
func NewSpace(id, name string, createdAt time.Time) *Space {
	return &Space{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateSpace validates a Space instance
func ValidateSpace(s *Space) error {
	if s == nil {
		return fmt.Errorf("space cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("space ID is required")
	}

	if s.Name == "" {
		return fmt.Errorf("space Name is required")
	}

	return nil
}
