package service

import (
	"fmt"

	"github.com/kyawswar87/share-mal/internal/storage"
)

// ValidationError is returned when a request breaks a field or business rule.
// Details lists the individual field failures, if any.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError is returned when a bill or person does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %d", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return storage.ErrNotFound }
