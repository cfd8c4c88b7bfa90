package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kyawswar87/share-mal/internal/calculator"
	"github.com/kyawswar87/share-mal/internal/metrics"
	"github.com/kyawswar87/share-mal/internal/models"
	"github.com/kyawswar87/share-mal/internal/storage"
	"github.com/kyawswar87/share-mal/internal/validation"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// Messages of the business rules checked on top of the field tags.
const (
	msgInvalidInput    = "Invalid input data"
	msgPersonsRequired = "At least one person is required for bill creation"
	msgTotalPositive   = "Total bill amount must be greater than zero"
	msgTotalMinimum    = "Total amount must be at least 0.01"
	msgTotalPrecision  = "Total amount must have at most 2 decimal places"
)

// BillService implements the bill operations behind the REST API.
type BillService struct {
	store     storage.Store
	validator *validation.Validator
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, v *validation.Validator) *BillService {
	return &BillService{store: store, validator: v}
}

// ListBills returns every bill, newest first.
func (s *BillService) ListBills(ctx context.Context) ([]api.BillDto, error) {
	slog.Debug("Fetching all bills")
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return toDTOs(bills), nil
}

// GetBill returns one bill with its persons.
func (s *BillService) GetBill(ctx context.Context, id int64) (api.BillDto, error) {
	slog.Debug("Fetching bill", "bill_id", id)
	bill, err := s.getBill(ctx, id)
	if err != nil {
		return api.BillDto{}, err
	}
	return bill.ToDTO(), nil
}

// ListBillsByStatus returns the bills with the given status.
func (s *BillService) ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]api.BillDto, error) {
	slog.Debug("Fetching bills by status", "status", status)
	bills, err := s.store.ListBillsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by status: %w", err)
	}
	return toDTOs(bills), nil
}

// SearchBills returns the bills whose title contains title, ignoring case.
func (s *BillService) SearchBills(ctx context.Context, title string) ([]api.BillDto, error) {
	slog.Debug("Searching bills", "title", title)
	bills, err := s.store.SearchBills(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search bills: %w", err)
	}
	return toDTOs(bills), nil
}

// CreateBill validates the request, splits the total and persists the bill.
// New bills are INCOMPLETE and every person starts UNPAID.
func (s *BillService) CreateBill(ctx context.Context, req api.BillCreateRequest) (api.BillDto, error) {
	slog.Debug("Creating bill", "title", req.Title, "operator", req.Operator, "persons", len(req.Persons))

	if err := s.validate(req); err != nil {
		return api.BillDto{}, err
	}
	if len(req.Persons) == 0 {
		return api.BillDto{}, &ValidationError{Message: msgPersonsRequired}
	}
	if err := checkTotal(req.TotalAmount); err != nil {
		return api.BillDto{}, err
	}

	amounts, err := splitAmounts(req.TotalAmount, req.Operator, req.Persons)
	if err != nil {
		slog.Error("CreateBill split failed", "error", err)
		return api.BillDto{}, err
	}

	bill := &models.Bill{
		Title:       req.Title,
		TotalAmount: req.TotalAmount,
		Operator:    req.Operator,
		BillDate:    req.BillDate,
		Status:      api.StatusIncomplete,
		Persons:     newPersons(req.Persons, amounts),
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return api.BillDto{}, fmt.Errorf("failed to create bill: %w", err)
	}

	metrics.BillsCreated.WithLabelValues(string(bill.Operator)).Inc()
	slog.Info("Bill created", "bill_id", bill.ID, "title", bill.Title)
	return s.GetBill(ctx, bill.ID)
}

// UpdateBill applies a partial update.
//
// A non-empty Persons list replaces the stored persons and amounts are split
// again. A person whose position and name match a stored person keeps that
// person's ID and payment status; anybody else starts UNPAID. Without
// Persons, a change of total or operator on an EQUALLY bill redistributes the
// total over the stored persons, while a CUSTOM bill keeps its stored
// amounts, which must still add up. Unless Status is given, the status is
// derived again when the list of people changed.
func (s *BillService) UpdateBill(ctx context.Context, id int64, req api.BillUpdateRequest) (api.BillDto, error) {
	slog.Debug("Updating bill", "bill_id", id)

	bill, err := s.getBill(ctx, id)
	if err != nil {
		return api.BillDto{}, err
	}
	if err := s.validate(req); err != nil {
		return api.BillDto{}, err
	}

	repriced := false
	if req.Title != nil {
		bill.Title = *req.Title
	}
	if req.TotalAmount != nil {
		if err := checkTotal(*req.TotalAmount); err != nil {
			return api.BillDto{}, err
		}
		repriced = repriced || !req.TotalAmount.Equal(bill.TotalAmount)
		bill.TotalAmount = *req.TotalAmount
	}
	if req.Operator != nil {
		repriced = repriced || *req.Operator != bill.Operator
		bill.Operator = *req.Operator
	}
	if req.BillDate != nil {
		bill.BillDate = *req.BillDate
	}

	switch {
	case len(req.Persons) > 0:
		amounts, err := splitAmounts(bill.TotalAmount, bill.Operator, req.Persons)
		if err != nil {
			return api.BillDto{}, err
		}
		persons, changed := mergePersons(bill.Persons, req.Persons, amounts)
		bill.Persons = persons
		if changed {
			bill.Status = calculator.DeriveBillStatus(bill.PaymentStatuses())
		}
	case repriced:
		if err := redistribute(bill); err != nil {
			return api.BillDto{}, err
		}
	}
	if req.Status != nil {
		bill.Status = *req.Status
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.BillDto{}, &NotFoundError{Resource: "Bill", ID: id}
		}
		slog.Error("UpdateBill failed", "bill_id", id, "error", err)
		return api.BillDto{}, fmt.Errorf("failed to update bill: %w", err)
	}

	slog.Info("Bill updated", "bill_id", id)
	return s.GetBill(ctx, id)
}

// DeleteBill removes a bill and its persons.
func (s *BillService) DeleteBill(ctx context.Context, id int64) error {
	slog.Debug("Deleting bill", "bill_id", id)

	err := s.store.DeleteBill(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Resource: "Bill", ID: id}
	}
	if err != nil {
		slog.Error("DeleteBill failed", "bill_id", id, "error", err)
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	slog.Info("Bill deleted", "bill_id", id)
	return nil
}

// TogglePayment flips one person's payment status and derives the bill
// status again.
func (s *BillService) TogglePayment(ctx context.Context, billID, personID int64) (api.BillDto, error) {
	slog.Debug("Toggling payment status", "bill_id", billID, "person_id", personID)

	bill, err := s.getBill(ctx, billID)
	if err != nil {
		return api.BillDto{}, err
	}

	var person *models.Person
	for i := range bill.Persons {
		if bill.Persons[i].ID == personID {
			person = &bill.Persons[i]
			break
		}
	}
	if person == nil {
		return api.BillDto{}, &NotFoundError{Resource: "Person", ID: personID}
	}

	next := person.PaymentStatus.Toggle()
	if err := s.store.SetPaymentStatus(ctx, billID, personID, next); err != nil {
		slog.Error("TogglePayment failed", "bill_id", billID, "person_id", personID, "error", err)
		return api.BillDto{}, fmt.Errorf("failed to update payment status: %w", err)
	}

	metrics.PaymentToggles.WithLabelValues(string(next)).Inc()
	slog.Info("Payment status toggled", "bill_id", billID, "person_id", personID, "status", next)
	return s.RefreshStatus(ctx, billID)
}

// RefreshStatus derives the bill status from its persons' payment statuses:
// COMPLETE when everyone paid, INCOMPLETE otherwise.
func (s *BillService) RefreshStatus(ctx context.Context, billID int64) (api.BillDto, error) {
	bill, err := s.getBill(ctx, billID)
	if err != nil {
		return api.BillDto{}, err
	}

	status := calculator.DeriveBillStatus(bill.PaymentStatuses())
	if err := s.store.SetBillStatus(ctx, billID, status); err != nil {
		slog.Error("RefreshStatus failed", "bill_id", billID, "error", err)
		return api.BillDto{}, fmt.Errorf("failed to update bill status: %w", err)
	}

	slog.Info("Bill status updated", "bill_id", billID, "status", status)
	return s.GetBill(ctx, billID)
}

func (s *BillService) getBill(ctx context.Context, id int64) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Bill", ID: id}
	}
	if err != nil {
		slog.Error("GetBill failed", "bill_id", id, "error", err)
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// validate checks the struct tags of a request body.
func (s *BillService) validate(req any) error {
	fieldErrs, err := s.validator.Struct(req)
	if err != nil {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	if len(fieldErrs) == 0 {
		return nil
	}

	details := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = s.validator.Translate(fe)
	}
	slog.Debug("Request validation failed", "details", details)
	return &ValidationError{Message: msgInvalidInput, Details: details}
}

// splitAmounts computes every person's amount for the operator.
func splitAmounts(total decimal.Decimal, operator api.OperatorType, persons []api.PersonCreateRequest) ([]decimal.Decimal, error) {
	var (
		amounts []decimal.Decimal
		err     error
	)
	if operator == api.OperatorCustom {
		requested := make([]calculator.PersonAmount, len(persons))
		for i, p := range persons {
			requested[i] = calculator.PersonAmount{Name: p.Name, Amount: p.Amount}
		}
		amounts, err = calculator.ValidateCustomAmounts(total, requested)
	} else {
		amounts, err = calculator.DistributeEqually(total, len(persons))
	}
	if err != nil {
		return nil, splitError(err)
	}
	return amounts, nil
}

// redistribute reprices the stored persons after a total or operator change.
func redistribute(bill *models.Bill) error {
	if bill.Operator == api.OperatorCustom {
		requested := make([]calculator.PersonAmount, len(bill.Persons))
		for i := range bill.Persons {
			requested[i] = calculator.PersonAmount{Name: bill.Persons[i].Name, Amount: &bill.Persons[i].Amount}
		}
		if _, err := calculator.ValidateCustomAmounts(bill.TotalAmount, requested); err != nil {
			return splitError(err)
		}
		return nil
	}

	amounts, err := calculator.DistributeEqually(bill.TotalAmount, len(bill.Persons))
	if err != nil {
		return splitError(err)
	}
	for i := range bill.Persons {
		bill.Persons[i].Amount = amounts[i]
	}
	return nil
}

func splitError(err error) error {
	if errors.Is(err, calculator.ErrNoParticipants) {
		return &ValidationError{Message: msgPersonsRequired}
	}
	return &ValidationError{Message: err.Error()}
}

// checkTotal applies the bill total rules on top of the field tags.
func checkTotal(total decimal.Decimal) error {
	if !total.IsPositive() {
		return &ValidationError{Message: msgTotalPositive}
	}
	switch err := calculator.CheckAmount(total); {
	case errors.Is(err, calculator.ErrBelowMinimum):
		return &ValidationError{Message: msgTotalMinimum}
	case errors.Is(err, calculator.ErrTooPrecise):
		return &ValidationError{Message: msgTotalPrecision}
	}
	return nil
}

// mergePersons builds the replacement person list. Entries matching a stored
// person by position and name keep its ID and payment status. changed is
// false when the names are exactly the stored ones, in the same order.
func mergePersons(stored []models.Person, reqs []api.PersonCreateRequest, amounts []decimal.Decimal) (persons []models.Person, changed bool) {
	persons = newPersons(reqs, amounts)
	changed = len(stored) != len(reqs)
	for i := range persons {
		if i >= len(stored) || stored[i].Name != persons[i].Name {
			changed = true
			continue
		}
		persons[i].ID = stored[i].ID
		persons[i].PaymentStatus = stored[i].PaymentStatus
	}
	return persons, changed
}

func newPersons(reqs []api.PersonCreateRequest, amounts []decimal.Decimal) []models.Person {
	persons := make([]models.Person, len(reqs))
	for i, p := range reqs {
		persons[i] = models.Person{
			Name:          p.Name,
			Amount:        amounts[i],
			PaymentStatus: api.PaymentUnpaid,
		}
	}
	return persons
}

func toDTOs(bills []*models.Bill) []api.BillDto {
	out := make([]api.BillDto, len(bills))
	for i, b := range bills {
		out[i] = b.ToDTO()
	}
	return out
}
