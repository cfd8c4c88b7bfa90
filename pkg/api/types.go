// Package api defines the JSON wire types exchanged between the share-mal
// backend and its clients. Field names are part of the public contract.
//
// Importing this package sets decimal.MarshalJSONWithoutQuotes, so every
// decimal.Decimal in the binary marshals as a JSON number rather than a
// quoted string. Amounts are encoded as numbers on the wire, and the share-mal
// binaries encode no decimals anywhere else.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// OperatorType is the splitting strategy of a bill.
type OperatorType string

const (
	OperatorEqually OperatorType = "EQUALLY"
	OperatorCustom  OperatorType = "CUSTOM"
)

// Valid reports whether o is a known operator.
func (o OperatorType) Valid() bool {
	return o == OperatorEqually || o == OperatorCustom
}

// Label returns the human readable name shown next to a bill.
func (o OperatorType) Label() string {
	switch o {
	case OperatorEqually:
		return "Split Equally"
	case OperatorCustom:
		return "Custom Amounts"
	default:
		return string(o)
	}
}

// BillStatus is the settlement state of a whole bill.
type BillStatus string

const (
	StatusIncomplete BillStatus = "INCOMPLETE"
	StatusComplete   BillStatus = "COMPLETE"
	StatusPaid       BillStatus = "PAID"
)

// ParseBillStatus parses a status name case-insensitively.
func ParseBillStatus(s string) (BillStatus, error) {
	switch st := BillStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusIncomplete, StatusComplete, StatusPaid:
		return st, nil
	default:
		return "", fmt.Errorf("invalid bill status %q", s)
	}
}

// PaymentStatus is the per-person payment flag.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "PAID"
	PaymentUnpaid PaymentStatus = "UNPAID"
)

// Toggle returns the opposite payment status.
func (p PaymentStatus) Toggle() PaymentStatus {
	if p == PaymentPaid {
		return PaymentUnpaid
	}
	return PaymentPaid
}

// PersonDto is one participant of a stored bill.
type PersonDto struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	BillID        int64           `json:"billId"`
}

// BillDto is a stored bill as returned by the backend.
type BillDto struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Operator    OperatorType    `json:"operator"`
	BillDate    string          `json:"billDate"`
	Status      BillStatus      `json:"status"`
	Persons     []PersonDto     `json:"persons"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PersonCreateRequest names a participant and, for CUSTOM bills, their amount.
// Amount is omitted entirely for EQUALLY bills.
type PersonCreateRequest struct {
	Name   string           `json:"name" validate:"required,notblank,min=1,max=100"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// BillCreateRequest is the body of POST /bills.
type BillCreateRequest struct {
	Title       string                `json:"title" validate:"required,notblank,min=1,max=255"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	Operator    OperatorType          `json:"operator" validate:"required,oneof=EQUALLY CUSTOM"`
	BillDate    string                `json:"billDate" validate:"required,datetime=2006-01-02"`
	Persons     []PersonCreateRequest `json:"persons" validate:"required,min=1,dive"`
}

// BillUpdateRequest is the body of PUT /bills/{id}. Nil fields are left
// unchanged; a non-empty Persons list replaces the bill's participants.
type BillUpdateRequest struct {
	Title       *string               `json:"title,omitempty" validate:"omitempty,notblank,min=1,max=255"`
	TotalAmount *decimal.Decimal      `json:"totalAmount,omitempty"`
	Operator    *OperatorType         `json:"operator,omitempty" validate:"omitempty,oneof=EQUALLY CUSTOM"`
	BillDate    *string               `json:"billDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status      *BillStatus           `json:"status,omitempty" validate:"omitempty,oneof=INCOMPLETE COMPLETE PAID"`
	Persons     []PersonCreateRequest `json:"persons,omitempty" validate:"omitempty,dive"`
}

// ResponseStatus marks an envelope as a success or an error.
type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "SUCCESS"
	ResponseError   ResponseStatus = "ERROR"
)

// Response is the envelope wrapping every successful payload.
type Response[T any] struct {
	Data      T              `json:"data"`
	Message   string         `json:"message"`
	Status    ResponseStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}

// ErrorDetails describes a failed request.
type ErrorDetails struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     ErrorDetails   `json:"error"`
	Status    ResponseStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}

// Error codes used in ErrorResponse.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "RESOURCE_NOT_FOUND"
	CodeIllegalArgument = "ILLEGAL_ARGUMENT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)
