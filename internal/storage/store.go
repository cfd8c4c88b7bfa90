// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/kyawswar87/share-mal/internal/models"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// ErrNotFound is returned when a bill or person does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill with its persons.
	// The ID, CreatedAt and UpdatedAt fields of the bill and the IDs of its
	// persons are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its persons.
	// Returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, id int64) (*models.Bill, error)

	// ListBills returns every bill, newest first.
	ListBills(ctx context.Context) ([]*models.Bill, error)

	// ListBillsByStatus returns the bills with the given status, newest first.
	ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]*models.Bill, error)

	// SearchBills returns the bills whose title contains term, ignoring case.
	SearchBills(ctx context.Context, term string) ([]*models.Bill, error)

	// UpdateBill overwrites an existing bill and synchronizes its persons:
	// persons with an ID are updated, persons without one are inserted and
	// stored persons missing from bill.Persons are deleted.
	// Returns ErrNotFound if the bill does not exist.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and its persons.
	// Returns ErrNotFound if the bill does not exist.
	DeleteBill(ctx context.Context, id int64) error

	// SetPaymentStatus sets the payment status of one person of a bill.
	// Returns ErrNotFound if no such person belongs to the bill.
	SetPaymentStatus(ctx context.Context, billID, personID int64, status api.PaymentStatus) error

	// SetBillStatus sets the status of a bill.
	// Returns ErrNotFound if the bill does not exist.
	SetBillStatus(ctx context.Context, id int64, status api.BillStatus) error

	// Close releases any resources held by the store.
	Close() error
}
