// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/kyawswar87/share-mal/internal/models"
	"github.com/kyawswar87/share-mal/internal/storage"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const billColumns = "id, title, total_amount, operator, bill_date, status, created_at, updated_at"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; serialize access in the pool.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill and its persons in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	now := s.now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = bill.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bills (title, total_amount, operator, bill_date, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.Title, bill.TotalAmount.String(), string(bill.Operator), bill.BillDate, string(bill.Status), bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	if bill.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read bill id: %w", err)
	}

	for i := range bill.Persons {
		if err := insertPerson(ctx, tx, bill.ID, i, &bill.Persons[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including its persons.
func (s *SQLiteStore) GetBill(ctx context.Context, id int64) (*models.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := s.loadPersons(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns all bills, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	return s.queryBills(ctx,
		"SELECT "+billColumns+" FROM bills ORDER BY created_at DESC, id DESC",
	)
}

// ListBillsByStatus returns the bills with the given status, newest first.
func (s *SQLiteStore) ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]*models.Bill, error) {
	return s.queryBills(ctx,
		"SELECT "+billColumns+" FROM bills WHERE status = ? ORDER BY created_at DESC, id DESC",
		string(status),
	)
}

// SearchBills returns the bills whose title contains term, ignoring case.
func (s *SQLiteStore) SearchBills(ctx context.Context, term string) ([]*models.Bill, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.queryBills(ctx,
		"SELECT "+billColumns+` FROM bills WHERE LOWER(title) LIKE ? ESCAPE '\' ORDER BY created_at DESC, id DESC`,
		pattern,
	)
}

// UpdateBill overwrites a bill and synchronizes its persons.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = s.now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET title = ?, total_amount = ?, operator = ?, bill_date = ?, status = ?, updated_at = ? WHERE id = ?",
		bill.Title, bill.TotalAmount.String(), string(bill.Operator), bill.BillDate, string(bill.Status), bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if err := expectRow(res, "bill", bill.ID); err != nil {
		return err
	}

	existing, err := personIDs(ctx, tx, bill.ID)
	if err != nil {
		return err
	}

	for i := range bill.Persons {
		p := &bill.Persons[i]
		if p.ID == 0 || !existing[p.ID] {
			p.ID = 0
			if err := insertPerson(ctx, tx, bill.ID, i, p); err != nil {
				return err
			}
			continue
		}
		delete(existing, p.ID)
		p.BillID = bill.ID
		_, err := tx.ExecContext(ctx,
			"UPDATE persons SET name = ?, amount = ?, payment_status = ?, position = ? WHERE id = ? AND bill_id = ?",
			p.Name, p.Amount.String(), string(p.PaymentStatus), i, p.ID, bill.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update person: %w", err)
		}
	}

	for id := range existing {
		if _, err := tx.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and its persons.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM persons WHERE bill_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete persons: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if err := expectRow(res, "bill", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetPaymentStatus sets the payment status of one person of a bill.
func (s *SQLiteStore) SetPaymentStatus(ctx context.Context, billID, personID int64, status api.PaymentStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE persons SET payment_status = ? WHERE id = ? AND bill_id = ?",
		string(status), personID, billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if err := expectRow(res, "person", personID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE bills SET updated_at = ? WHERE id = ?", s.now().Unix(), billID,
	); err != nil {
		return fmt.Errorf("failed to touch bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetBillStatus sets the status of a bill.
func (s *SQLiteStore) SetBillStatus(ctx context.Context, id int64, status api.BillStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET status = ?, updated_at = ? WHERE id = ?",
		string(status), s.now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	return expectRow(res, "bill", id)
}

// queryBills runs a bill query and loads the persons of every row. Rows are
// collected before persons are loaded because the pool holds one connection.
func (s *SQLiteStore) queryBills(ctx context.Context, query string, args ...any) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := []*models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	rows.Close()

	for _, bill := range bills {
		if err := s.loadPersons(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func (s *SQLiteStore) loadPersons(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount, payment_status FROM persons WHERE bill_id = ? ORDER BY position, id",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get persons: %w", err)
	}
	defer rows.Close()

	bill.Persons = []models.Person{}
	for rows.Next() {
		var (
			p      models.Person
			amount string
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &amount, &status); err != nil {
			return fmt.Errorf("failed to scan person: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("failed to parse amount of person %d: %w", p.ID, err)
		}
		p.BillID = bill.ID
		p.PaymentStatus = api.PaymentStatus(status)
		bill.Persons = append(bill.Persons, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate persons: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	var (
		bill     models.Bill
		total    string
		operator string
		status   string
	)
	if err := row.Scan(&bill.ID, &bill.Title, &total, &operator, &bill.BillDate, &status, &bill.CreatedAt, &bill.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total of bill %d: %w", bill.ID, err)
	}
	bill.TotalAmount = amount
	bill.Operator = api.OperatorType(operator)
	bill.Status = api.BillStatus(status)
	return &bill, nil
}

func insertPerson(ctx context.Context, tx *sql.Tx, billID int64, position int, p *models.Person) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO persons (bill_id, name, amount, payment_status, position) VALUES (?, ?, ?, ?, ?)",
		billID, p.Name, p.Amount.String(), string(p.PaymentStatus), position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read person id: %w", err)
	}
	p.BillID = billID
	return nil
}

func personIDs(ctx context.Context, tx *sql.Tx, billID int64) (map[int64]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM persons WHERE bill_id = ?", billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get persons: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func expectRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

// escapeLike escapes the LIKE wildcards in s so that it matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
