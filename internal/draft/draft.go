// Package draft models the bill create/edit form as an immutable value.
//
// Every transition returns a new Draft and never touches the receiver's
// participants, so the caller owning the current value can keep or discard
// intermediate states freely. Under the EQUALLY strategy the participants'
// shares are derived from the total and the head count by the transitions
// themselves; under CUSTOM they are whatever the user typed.
package draft

import (
	"fmt"
	"time"

	"github.com/kyawswar87/share-mal/internal/calculator"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// DateLayout is the format of a bill date.
const DateLayout = "2006-01-02"

// Participant is one row of the form's person list. Rows have no identity
// beyond their position.
type Participant struct {
	Name  string
	Share string
}

// Draft is the in-progress, unsaved bill.
type Draft struct {
	Title        string
	TotalAmount  string
	Strategy     api.OperatorType
	BillDate     string
	Participants []Participant
}

// New returns an empty form dated now: equal split, one blank participant.
func New(now time.Time) Draft {
	return Draft{
		Strategy:     api.OperatorEqually,
		BillDate:     now.Format(DateLayout),
		Participants: []Participant{{}},
	}
}

// FromBill prefills the form for editing an existing bill.
func FromBill(bill api.BillDto) Draft {
	d := Draft{
		Title:       bill.Title,
		TotalAmount: bill.TotalAmount.String(),
		Strategy:    bill.Operator,
		BillDate:    bill.BillDate,
	}
	if !d.Strategy.Valid() {
		d.Strategy = api.OperatorEqually
	}
	for _, p := range bill.Persons {
		d.Participants = append(d.Participants, Participant{Name: p.Name, Share: p.Amount.String()})
	}
	if len(d.Participants) == 0 {
		d.Participants = []Participant{{}}
	}
	return d.recompute()
}

// SetTitle returns a copy with the title replaced.
func (d Draft) SetTitle(title string) Draft {
	d.Title = title
	return d
}

// SetBillDate returns a copy with the bill date replaced.
func (d Draft) SetBillDate(date string) Draft {
	d.BillDate = date
	return d
}

// SetTotal returns a copy with the total replaced and, for equal splits,
// every share recomputed.
func (d Draft) SetTotal(total string) Draft {
	d.TotalAmount = total
	return d.recompute()
}

// SetStrategy switches the splitting strategy. Switching to EQUALLY
// overwrites every share with the equal split, discarding custom entries.
// Switching to CUSTOM keeps the current shares as editable starting values.
func (d Draft) SetStrategy(s api.OperatorType) Draft {
	d.Strategy = s
	return d.recompute()
}

// AddParticipant appends a blank participant. Under EQUALLY the new head
// count changes everyone's share, not only the new row's.
func (d Draft) AddParticipant() Draft {
	ps := make([]Participant, len(d.Participants), len(d.Participants)+1)
	copy(ps, d.Participants)
	d.Participants = append(ps, Participant{})
	return d.recompute()
}

// CanRemove reports whether a participant may be removed. The last
// remaining participant never can.
func (d Draft) CanRemove() bool {
	return len(d.Participants) > 1
}

// RemoveParticipant drops the participant at i. It is a no-op when i is
// out of range or when only one participant is left.
func (d Draft) RemoveParticipant(i int) Draft {
	if !d.CanRemove() || i < 0 || i >= len(d.Participants) {
		return d
	}
	ps := make([]Participant, 0, len(d.Participants)-1)
	ps = append(ps, d.Participants[:i]...)
	d.Participants = append(ps, d.Participants[i+1:]...)
	return d.recompute()
}

// SetParticipantName renames the participant at i.
func (d Draft) SetParticipantName(i int, name string) Draft {
	if i < 0 || i >= len(d.Participants) {
		return d
	}
	d.Participants = clone(d.Participants)
	d.Participants[i].Name = name
	return d
}

// SetParticipantShare sets the share typed for participant i. Shares are
// read-only under EQUALLY, so the edit is ignored there.
func (d Draft) SetParticipantShare(i int, share string) Draft {
	if d.Strategy != api.OperatorCustom || i < 0 || i >= len(d.Participants) {
		return d
	}
	d.Participants = clone(d.Participants)
	d.Participants[i].Share = share
	return d
}

// Shares lists the participants' shares in order.
func (d Draft) Shares() []string {
	shares := make([]string, len(d.Participants))
	for i, p := range d.Participants {
		shares[i] = p.Share
	}
	return shares
}

// CustomTotal is the running sum of the typed shares, formatted to cents.
// It is informational only; it does not have to match TotalAmount.
func (d Draft) CustomTotal() string {
	return calculator.FormatAmount(calculator.ComputeCustomTotal(d.Shares()))
}

// recompute re-broadcasts the equal share to every participant. It leaves
// the shares untouched when the strategy is CUSTOM or the total is not a
// usable positive amount.
func (d Draft) recompute() Draft {
	if d.Strategy != api.OperatorEqually {
		return d
	}
	share, ok := calculator.RecomputeEqualShares(d.TotalAmount, len(d.Participants))
	if !ok {
		return d
	}
	ps := make([]Participant, len(d.Participants))
	for i, p := range d.Participants {
		p.Share = share
		ps[i] = p
	}
	d.Participants = ps
	return d
}

// ToCreateRequest maps a validated draft onto the create payload. Amounts
// are sent only for CUSTOM splits; the backend derives equal shares itself.
func (d Draft) ToCreateRequest() (api.BillCreateRequest, error) {
	total, err := calculator.ParseAmount(d.TotalAmount)
	if err != nil {
		return api.BillCreateRequest{}, fmt.Errorf("failed to parse total amount: %w", err)
	}
	persons, err := d.personRequests()
	if err != nil {
		return api.BillCreateRequest{}, err
	}
	return api.BillCreateRequest{
		Title:       d.Title,
		TotalAmount: total,
		Operator:    d.Strategy,
		BillDate:    d.BillDate,
		Persons:     persons,
	}, nil
}

// ToUpdateRequest maps a validated draft onto the update payload. Every
// field is sent, replacing the stored participants.
func (d Draft) ToUpdateRequest() (api.BillUpdateRequest, error) {
	create, err := d.ToCreateRequest()
	if err != nil {
		return api.BillUpdateRequest{}, err
	}
	return api.BillUpdateRequest{
		Title:       &create.Title,
		TotalAmount: &create.TotalAmount,
		Operator:    &create.Operator,
		BillDate:    &create.BillDate,
		Persons:     create.Persons,
	}, nil
}

func (d Draft) personRequests() ([]api.PersonCreateRequest, error) {
	persons := make([]api.PersonCreateRequest, len(d.Participants))
	for i, p := range d.Participants {
		persons[i] = api.PersonCreateRequest{Name: p.Name}
		if d.Strategy != api.OperatorCustom {
			continue
		}
		amount, err := calculator.ParseAmount(p.Share)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount of person %d: %w", i+1, err)
		}
		persons[i].Amount = &amount
	}
	return persons, nil
}

func clone(ps []Participant) []Participant {
	out := make([]Participant, len(ps))
	copy(out, ps)
	return out
}
