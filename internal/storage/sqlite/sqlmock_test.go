package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyawswar87/share-mal/internal/storage"
	"github.com/kyawswar87/share-mal/pkg/api"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := newStore(db)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }
	return store, mock
}

func TestCreateBillRollsBackOnPersonFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bills").
		WithArgs("Dinner", "100", "EQUALLY", "2024-01-15", "INCOMPLETE", int64(1700000000), int64(1700000000)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO persons").
		WithArgs(int64(7), "Alice", "50", "UNPAID", 0).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.CreateBill(context.Background(), dinner("Dinner", api.StatusIncomplete, "Alice", "Bob"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert person")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBillMapsNoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + billColumns + " FROM bills WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetBill(context.Background(), 3)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBillRejectsCorruptAmount(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "title", "total_amount", "operator", "bill_date", "status", "created_at", "updated_at"}).
		AddRow(int64(1), "Dinner", "ten", "EQUALLY", "2024-01-15", "INCOMPLETE", int64(1), int64(1))
	mock.ExpectQuery("SELECT .* FROM bills WHERE id = ?").WithArgs(int64(1)).WillReturnRows(rows)

	_, err := store.GetBill(context.Background(), 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to parse total")
}

func TestListBillsPropagatesQueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM bills ORDER BY").WillReturnError(errors.New("database is locked"))

	bills, err := store.ListBills(context.Background())

	assert.Nil(t, bills)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list bills")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentStatusTouchesBill(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE persons SET payment_status").
		WithArgs("PAID", int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bills SET updated_at").
		WithArgs(int64(1700000000), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SetPaymentStatus(context.Background(), 1, 2, api.PaymentPaid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBillMissingRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM persons").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM bills").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteBill(context.Background(), 5)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
