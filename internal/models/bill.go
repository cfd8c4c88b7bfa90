package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyawswar87/share-mal/pkg/api"
)

// Bill is a shared expense split between its persons.
type Bill struct {
	// ID is assigned by the store on creation.
	ID int64

	// Title is the user-provided name, 1 to 255 characters.
	Title string

	// TotalAmount is the full amount of the bill.
	TotalAmount decimal.Decimal

	// Operator decides how TotalAmount is split between Persons.
	Operator api.OperatorType

	// BillDate is the day of the expense, formatted YYYY-MM-DD.
	BillDate string

	// Status is INCOMPLETE until every person has paid.
	Status api.BillStatus

	// Persons are kept in the order they were entered.
	Persons []Person

	// CreatedAt and UpdatedAt are Unix timestamps set by the store.
	CreatedAt int64
	UpdatedAt int64
}

// Person is one participant of a bill.
type Person struct {
	// ID is assigned by the store on creation.
	ID int64

	BillID int64

	Name string

	// Amount is this person's share of the bill.
	Amount decimal.Decimal

	PaymentStatus api.PaymentStatus
}

// PaymentStatuses lists the payment status of every person, in order.
func (b *Bill) PaymentStatuses() []api.PaymentStatus {
	out := make([]api.PaymentStatus, len(b.Persons))
	for i, p := range b.Persons {
		out[i] = p.PaymentStatus
	}
	return out
}

// ToDTO converts the bill into its wire form.
func (b *Bill) ToDTO() api.BillDto {
	persons := make([]api.PersonDto, len(b.Persons))
	for i, p := range b.Persons {
		persons[i] = api.PersonDto{
			ID:            p.ID,
			Name:          p.Name,
			Amount:        p.Amount,
			PaymentStatus: p.PaymentStatus,
			BillID:        b.ID,
		}
	}
	return api.BillDto{
		ID:          b.ID,
		Title:       b.Title,
		TotalAmount: b.TotalAmount,
		Operator:    b.Operator,
		BillDate:    b.BillDate,
		Status:      b.Status,
		Persons:     persons,
		CreatedAt:   time.Unix(b.CreatedAt, 0).UTC(),
		UpdatedAt:   time.Unix(b.UpdatedAt, 0).UTC(),
	}
}
