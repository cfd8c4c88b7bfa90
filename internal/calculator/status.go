package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/kyawswar87/share-mal/pkg/api"
)

// DeriveBillStatus computes a bill's status from its people's payment
// statuses: COMPLETE once everybody paid, INCOMPLETE otherwise. A bill with
// nobody on it is INCOMPLETE.
func DeriveBillStatus(statuses []api.PaymentStatus) api.BillStatus {
	if len(statuses) == 0 {
		return api.StatusIncomplete
	}
	for _, s := range statuses {
		if s != api.PaymentPaid {
			return api.StatusIncomplete
		}
	}
	return api.StatusComplete
}

// PaymentSummary aggregates the payment state of one bill.
type PaymentSummary struct {
	PaidCount   int
	UnpaidCount int
	Paid        decimal.Decimal // Sum of amounts already paid
	Outstanding decimal.Decimal // Sum of amounts still owed
}

// Summarize aggregates who has paid what on a bill.
func Summarize(persons []api.PersonDto) PaymentSummary {
	summary := PaymentSummary{Paid: decimal.Zero, Outstanding: decimal.Zero}
	for _, p := range persons {
		if p.PaymentStatus == api.PaymentPaid {
			summary.PaidCount++
			summary.Paid = summary.Paid.Add(p.Amount)
		} else {
			summary.UnpaidCount++
			summary.Outstanding = summary.Outstanding.Add(p.Amount)
		}
	}
	return summary
}
