// Package app holds the state of the bill manager front end and the actions
// that change it. It owns the current draft and reaches the backend only
// through BillAPI.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kyawswar87/share-mal/internal/client"
	"github.com/kyawswar87/share-mal/internal/draft"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// Fallback messages shown when a failure carries no server message.
const (
	MsgLoadFailed    = "Failed to load bills"
	MsgSaveFailed    = "Failed to save bill"
	MsgDeleteFailed  = "Failed to delete bill"
	MsgPaymentFailed = "Failed to update payment status"
)

var (
	// ErrSubmitInFlight is returned when a draft is submitted while the
	// previous submission has not completed.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrNoForm is returned when there is no open form to submit.
	ErrNoForm = errors.New("no bill form is open")
)

// BillAPI is the subset of the bill client the front end uses.
type BillAPI interface {
	ListBills(ctx context.Context) ([]api.BillDto, error)
	ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]api.BillDto, error)
	SearchBills(ctx context.Context, title string) ([]api.BillDto, error)
	CreateBill(ctx context.Context, req api.BillCreateRequest) (api.BillDto, error)
	UpdateBill(ctx context.Context, id int64, req api.BillUpdateRequest) (api.BillDto, error)
	DeleteBill(ctx context.Context, id int64) error
	PayBill(ctx context.Context, billID, personID int64) (api.BillDto, error)
}

var _ BillAPI = (*client.Client)(nil)

// State is a snapshot of everything the front end displays.
type State struct {
	Bills []api.BillDto

	// Current is the bill shown in the detail view.
	Current *api.BillDto

	// Editing is the bill the form edits; nil while creating.
	Editing *api.BillDto

	Draft       draft.Draft
	FieldErrors draft.FieldErrors

	// SearchTerm takes precedence over StatusFilter when loading bills.
	SearchTerm   string
	StatusFilter api.BillStatus

	Error      string
	Loading    bool
	Submitting bool
	ShowForm   bool
	ShowDetail bool
}

// App is the front-end controller. It is safe for concurrent use; network
// calls run without holding the lock.
type App struct {
	api BillAPI

	mu    sync.Mutex
	state State
}

// New returns an App with nothing loaded.
func New(billAPI BillAPI) *App {
	return &App{api: billAPI}
}

// State returns a copy of the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.state
	s.Bills = append([]api.BillDto(nil), a.state.Bills...)
	s.Current = copyBill(a.state.Current)
	s.Editing = copyBill(a.state.Editing)
	return s
}

// LoadBills fetches the bill list: by search term when one is set, otherwise
// by status filter when one is set, otherwise all bills.
func (a *App) LoadBills(ctx context.Context) error {
	a.mu.Lock()
	a.state.Loading = true
	a.state.Error = ""
	term, status := a.state.SearchTerm, a.state.StatusFilter
	a.mu.Unlock()

	var (
		bills []api.BillDto
		err   error
	)
	switch {
	case term != "":
		bills, err = a.api.SearchBills(ctx, term)
	case status != "":
		bills, err = a.api.ListBillsByStatus(ctx, status)
	default:
		bills, err = a.api.ListBills(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Loading = false
	if err != nil {
		a.state.Error = failure(err, MsgLoadFailed)
		return err
	}
	a.state.Bills = bills
	return nil
}

// Search sets the search term and reloads the list.
func (a *App) Search(ctx context.Context, term string) error {
	a.mu.Lock()
	a.state.SearchTerm = term
	a.mu.Unlock()
	return a.LoadBills(ctx)
}

// FilterByStatus sets the status filter and reloads the list. An empty
// status shows every bill.
func (a *App) FilterByStatus(ctx context.Context, status api.BillStatus) error {
	a.mu.Lock()
	a.state.StatusFilter = status
	a.mu.Unlock()
	return a.LoadBills(ctx)
}

// NewBill opens an empty form dated now.
func (a *App) NewBill(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openForm(nil, draft.New(now))
}

// EditBill opens the form prefilled with bill.
func (a *App) EditBill(bill api.BillDto) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openForm(&bill, draft.FromBill(bill))
}

func (a *App) openForm(editing *api.BillDto, d draft.Draft) {
	a.state.ShowForm = true
	a.state.ShowDetail = false
	a.state.Editing = editing
	a.state.Draft = d
	a.state.FieldErrors = nil
}

// ViewBill shows bill in the detail view.
func (a *App) ViewBill(bill api.BillDto) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Current = &bill
	a.state.ShowDetail = true
	a.state.ShowForm = false
}

// CancelForm closes the form and discards the draft.
func (a *App) CancelForm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.ShowForm = false
	a.state.Editing = nil
	a.state.Draft = draft.Draft{}
	a.state.FieldErrors = nil
	a.state.Error = ""
}

// CloseDetail closes the detail view.
func (a *App) CloseDetail() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.ShowDetail = false
	a.state.Current = nil
}

// ClearError dismisses the error message.
func (a *App) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Error = ""
}

// UpdateDraft applies a draft transition, for example
//
//	a.UpdateDraft(func(d draft.Draft) draft.Draft { return d.SetTotal("100") })
//
// It does nothing while no form is open.
func (a *App) UpdateDraft(fn func(draft.Draft) draft.Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.ShowForm {
		return
	}
	a.state.Draft = fn(a.state.Draft)
}

// SubmitDraft validates the draft and, when it is valid, creates or updates
// the bill. Field errors are returned without contacting the backend. On
// success the form is closed and the list reloaded; on failure the draft is
// kept so the user can retry.
func (a *App) SubmitDraft(ctx context.Context) (draft.FieldErrors, error) {
	a.mu.Lock()
	if !a.state.ShowForm {
		a.mu.Unlock()
		return nil, ErrNoForm
	}
	if a.state.Submitting {
		a.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	d := a.state.Draft
	if errs := d.Validate(); len(errs) > 0 {
		a.state.FieldErrors = errs
		a.mu.Unlock()
		return errs, nil
	}
	editing := copyBill(a.state.Editing)
	a.state.FieldErrors = nil
	a.state.Submitting = true
	a.state.Loading = true
	a.state.Error = ""
	a.mu.Unlock()

	err := a.save(ctx, d, editing)

	a.mu.Lock()
	a.state.Submitting = false
	a.state.Loading = false
	if err != nil {
		a.state.Error = failure(err, MsgSaveFailed)
		a.mu.Unlock()
		return nil, err
	}
	a.state.ShowForm = false
	a.state.Editing = nil
	a.state.Draft = draft.Draft{}
	a.mu.Unlock()

	return nil, a.LoadBills(ctx)
}

func (a *App) save(ctx context.Context, d draft.Draft, editing *api.BillDto) error {
	if editing != nil {
		req, err := d.ToUpdateRequest()
		if err != nil {
			return err
		}
		_, err = a.api.UpdateBill(ctx, editing.ID, req)
		return err
	}
	req, err := d.ToCreateRequest()
	if err != nil {
		return err
	}
	_, err = a.api.CreateBill(ctx, req)
	return err
}

// DeleteBill deletes bill and reloads the list. Deleting the bill shown in
// the detail view closes it.
func (a *App) DeleteBill(ctx context.Context, bill api.BillDto) error {
	if err := a.api.DeleteBill(ctx, bill.ID); err != nil {
		a.setError(failure(err, MsgDeleteFailed))
		return err
	}

	a.mu.Lock()
	if a.state.Current != nil && a.state.Current.ID == bill.ID {
		a.state.Current = nil
		a.state.ShowDetail = false
	}
	a.mu.Unlock()

	return a.LoadBills(ctx)
}

// TogglePayment flips the payment status of one person of the bill in the
// detail view. It does nothing when no bill is shown.
func (a *App) TogglePayment(ctx context.Context, personID int64) error {
	a.mu.Lock()
	current := copyBill(a.state.Current)
	a.mu.Unlock()
	if current == nil {
		return nil
	}

	updated, err := a.api.PayBill(ctx, current.ID, personID)
	if err != nil {
		a.setError(failure(err, MsgPaymentFailed))
		return err
	}

	a.mu.Lock()
	if a.state.Current != nil && a.state.Current.ID == updated.ID {
		a.state.Current = &updated
	}
	a.mu.Unlock()

	return a.LoadBills(ctx)
}

func (a *App) setError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Error = msg
}

// failure picks the message shown for a failed action: the server's own
// message when the response carried one, fallback otherwise.
func failure(err error, fallback string) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return fallback
}

func copyBill(b *api.BillDto) *api.BillDto {
	if b == nil {
		return nil
	}
	c := *b
	c.Persons = append([]api.PersonDto(nil), b.Persons...)
	return &c
}
