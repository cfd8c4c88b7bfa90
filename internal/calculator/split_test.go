package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecomputeEqualShares(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants int
		wantShare    string
		wantOK       bool
	}{
		{name: "two people", total: "100", participants: 2, wantShare: "50.00", wantOK: true},
		{name: "three people not redistributed", total: "100", participants: 3, wantShare: "33.33", wantOK: true},
		{name: "single person", total: "100", participants: 1, wantShare: "100.00", wantOK: true},
		{name: "half cent rounds up", total: "0.05", participants: 2, wantShare: "0.03", wantOK: true},
		{name: "two thirds rounds up", total: "2", participants: 3, wantShare: "0.67", wantOK: true},
		{name: "surrounding whitespace", total: " 90.00 ", participants: 4, wantShare: "22.50", wantOK: true},
		{name: "blank total", total: "", participants: 2, wantOK: false},
		{name: "garbage total", total: "abc", participants: 2, wantOK: false},
		{name: "zero total", total: "0", participants: 2, wantOK: false},
		{name: "negative total", total: "-10", participants: 2, wantOK: false},
		{name: "no participants", total: "100", participants: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, ok := RecomputeEqualShares(tt.total, tt.participants)
			if ok != tt.wantOK {
				t.Fatalf("RecomputeEqualShares(%q, %d) ok = %v, want %v", tt.total, tt.participants, ok, tt.wantOK)
			}
			if ok && share != tt.wantShare {
				t.Errorf("RecomputeEqualShares(%q, %d) = %q, want %q", tt.total, tt.participants, share, tt.wantShare)
			}
		})
	}
}

func TestComputeCustomTotal(t *testing.T) {
	tests := []struct {
		name   string
		shares []string
		want   string
	}{
		{name: "all filled", shares: []string{"30", "20"}, want: "50.00"},
		{name: "blank counts as zero", shares: []string{"30", ""}, want: "30.00"},
		{name: "garbage counts as zero", shares: []string{"12.5", "x", "7.25"}, want: "19.75"},
		{name: "empty", shares: nil, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(ComputeCustomTotal(tt.shares))
			if got != tt.want {
				t.Errorf("ComputeCustomTotal(%v) = %s, want %s", tt.shares, got, tt.want)
			}
		})
	}
}

func TestDistributeEqually(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{name: "even split", total: "100", n: 2, want: []string{"50.00", "50.00"}},
		{name: "remainder goes to last", total: "100", n: 3, want: []string{"33.33", "33.33", "33.34"}},
		{name: "rounds down before remainder", total: "10", n: 6, want: []string{"1.66", "1.66", "1.66", "1.66", "1.66", "1.70"}},
		{name: "one person", total: "42.42", n: 1, want: []string{"42.42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			amounts, err := DistributeEqually(total, tt.n)
			if err != nil {
				t.Fatalf("DistributeEqually() error = %v", err)
			}
			if len(amounts) != len(tt.want) {
				t.Fatalf("DistributeEqually() returned %d amounts, want %d", len(amounts), len(tt.want))
			}
			sum := decimal.Zero
			for i, a := range amounts {
				if FormatAmount(a) != tt.want[i] {
					t.Errorf("amount[%d] = %s, want %s", i, FormatAmount(a), tt.want[i])
				}
				sum = sum.Add(a)
			}
			if !sum.Equal(total) {
				t.Errorf("amounts sum to %s, want %s", sum, total)
			}
		})
	}

	if _, err := DistributeEqually(decimal.NewFromInt(10), 0); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("DistributeEqually with no people error = %v, want ErrNoParticipants", err)
	}
}

func TestValidateCustomAmounts(t *testing.T) {
	amount := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name    string
		total   string
		persons []PersonAmount
		wantErr error
		wantMsg string
	}{
		{
			name:    "amounts add up",
			total:   "50",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("30")}, {Name: "Bob", Amount: amount("20.00")}},
		},
		{
			name:    "sum mismatch",
			total:   "100",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("30")}, {Name: "Bob", Amount: amount("20")}},
			wantErr: ErrSumMismatch,
			wantMsg: "Custom amounts validation failed: Sum of individual amounts (50.00) does not equal total bill amount (100.00). Please ensure all amounts add up correctly.",
		},
		{
			name:    "missing amount",
			total:   "30",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("30")}, {Name: "Bob"}},
			wantErr: ErrAmountRequired,
			wantMsg: "Amount is required for person: Bob when using CUSTOM operator",
		},
		{
			name:    "negative amount",
			total:   "30",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("40")}, {Name: "Bob", Amount: amount("-10")}},
			wantErr: ErrNegativeAmount,
			wantMsg: "Amount cannot be negative for person: Bob",
		},
		{
			name:    "zero amount",
			total:   "30",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("30")}, {Name: "Bob", Amount: amount("0")}},
			wantErr: ErrBelowMinimum,
			wantMsg: "Amount must be greater than 0 for person: Bob",
		},
		{
			name:    "fraction of a cent",
			total:   "10.01",
			persons: []PersonAmount{{Name: "Alice", Amount: amount("5.005")}, {Name: "Bob", Amount: amount("5.005")}},
			wantErr: ErrTooPrecise,
			wantMsg: "Amount must have at most 2 decimal places for person: Alice",
		},
		{
			name:    "nobody",
			total:   "30",
			wantErr: ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, err := ValidateCustomAmounts(decimal.RequireFromString(tt.total), tt.persons)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateCustomAmounts() error = %v", err)
				}
				if len(amounts) != len(tt.persons) {
					t.Errorf("got %d amounts, want %d", len(amounts), len(tt.persons))
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateCustomAmounts() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("error message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"0.01", nil},
		{"100", nil},
		{"10.50", nil},
		{"10.500", nil},
		{"0", ErrBelowMinimum},
		{"0.001", ErrBelowMinimum},
		{"-5", ErrBelowMinimum},
		{"10.005", ErrTooPrecise},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := CheckAmount(decimal.RequireFromString(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckAmount(%s) = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
