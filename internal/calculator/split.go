package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits every share is rounded to.
const Scale = 2

// MinAmount is the smallest amount a bill total or a custom share may hold.
var MinAmount = decimal.New(1, -Scale)

var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrAmountRequired = errors.New("amount is required")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrBelowMinimum   = errors.New("amount must be at least 0.01")
	ErrTooPrecise     = errors.New("amount must have at most 2 decimal places")
	ErrSumMismatch    = errors.New("custom amounts do not add up to the bill total")
)

// ParseAmount parses a user-entered amount such as "12.5" or " 100 ".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatAmount renders d with exactly two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// CheckAmount reports whether d is a storable money amount: at least
// MinAmount and with no more than Scale significant fraction digits.
func CheckAmount(d decimal.Decimal) error {
	if d.LessThan(MinAmount) {
		return ErrBelowMinimum
	}
	if !d.Equal(d.Truncate(Scale)) {
		return ErrTooPrecise
	}
	return nil
}

// RecomputeEqualShares returns the per-person share of totalAmount split
// between participantCount people, rounded half-up to cents.
//
// ok is false when the total is blank, unparseable or not positive, or when
// there is nobody to split between; callers must then keep whatever shares
// they already display. No remainder is redistributed: 100 split three ways
// yields "33.33" for everyone.
func RecomputeEqualShares(totalAmount string, participantCount int) (share string, ok bool) {
	if participantCount <= 0 {
		return "", false
	}
	total, err := ParseAmount(totalAmount)
	if err != nil || !total.IsPositive() {
		return "", false
	}
	return FormatAmount(total.DivRound(decimal.NewFromInt(int64(participantCount)), Scale)), true
}

// ComputeCustomTotal sums the parseable shares. Blank or malformed entries
// count as zero so that one bad field never hides the running total.
func ComputeCustomTotal(shares []string) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		d, err := ParseAmount(s)
		if err != nil {
			continue
		}
		sum = sum.Add(d)
	}
	return sum.Round(Scale)
}

// DistributeEqually splits total between n people for storage. Every person
// gets total/n rounded down to cents and the last person also takes the
// remainder, so the stored amounts always add up to total exactly.
func DistributeEqually(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, ErrNoParticipants
	}
	count := decimal.NewFromInt(int64(n))
	per, _ := total.QuoRem(count, Scale)
	remainder := total.Sub(per.Mul(count))

	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = per
	}
	amounts[n-1] = per.Add(remainder)
	return amounts, nil
}

// PersonAmount is a participant's requested amount on a CUSTOM bill.
type PersonAmount struct {
	Name   string
	Amount *decimal.Decimal
}

// AmountError reports a missing or negative custom amount for one person.
type AmountError struct {
	Name string
	Err  error
}

func (e *AmountError) Error() string {
	switch {
	case errors.Is(e.Err, ErrAmountRequired):
		return fmt.Sprintf("Amount is required for person: %s when using CUSTOM operator", e.Name)
	case errors.Is(e.Err, ErrNegativeAmount):
		return fmt.Sprintf("Amount cannot be negative for person: %s", e.Name)
	case errors.Is(e.Err, ErrBelowMinimum):
		return fmt.Sprintf("Amount must be greater than 0 for person: %s", e.Name)
	case errors.Is(e.Err, ErrTooPrecise):
		return fmt.Sprintf("Amount must have at most 2 decimal places for person: %s", e.Name)
	default:
		return fmt.Sprintf("%v for person: %s", e.Err, e.Name)
	}
}

func (e *AmountError) Unwrap() error { return e.Err }

// SumMismatchError reports custom amounts that do not add up to the total.
type SumMismatchError struct {
	Sum   decimal.Decimal
	Total decimal.Decimal
}

func (e *SumMismatchError) Error() string {
	return fmt.Sprintf("Custom amounts validation failed: Sum of individual amounts (%s) does not equal total bill amount (%s). Please ensure all amounts add up correctly.",
		FormatAmount(e.Sum), FormatAmount(e.Total))
}

func (e *SumMismatchError) Unwrap() error { return ErrSumMismatch }

// ValidateCustomAmounts checks the amounts of a CUSTOM bill and returns them
// in participant order. Every amount must be present, at least MinAmount
// and in whole cents, and together they must equal total.
func ValidateCustomAmounts(total decimal.Decimal, persons []PersonAmount) ([]decimal.Decimal, error) {
	if len(persons) == 0 {
		return nil, ErrNoParticipants
	}

	amounts := make([]decimal.Decimal, len(persons))
	sum := decimal.Zero
	for i, p := range persons {
		if p.Amount == nil {
			return nil, &AmountError{Name: p.Name, Err: ErrAmountRequired}
		}
		if p.Amount.IsNegative() {
			return nil, &AmountError{Name: p.Name, Err: ErrNegativeAmount}
		}
		if err := CheckAmount(*p.Amount); err != nil {
			return nil, &AmountError{Name: p.Name, Err: err}
		}
		amounts[i] = *p.Amount
		sum = sum.Add(*p.Amount)
	}

	if !sum.Equal(total) {
		return nil, &SumMismatchError{Sum: sum, Total: total}
	}
	return amounts, nil
}
