package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyawswar87/share-mal/internal/httpapi"
	"github.com/kyawswar87/share-mal/internal/service"
	"github.com/kyawswar87/share-mal/internal/storage/sqlite"
	"github.com/kyawswar87/share-mal/internal/validation"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// recorded is one request seen by the mock backend.
type recorded struct {
	Method    string
	URI       string
	RequestID string
	Body      string
}

func mockBackend(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var seen []recorded
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = append(seen, recorded{
			Method:    r.Method,
			URI:       r.URL.RequestURI(),
			RequestID: r.Header.Get(RequestIDHeader),
			Body:      string(raw),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return New(ts.URL+"/api/v1/", WithHTTPClient(ts.Client())), &seen
}

const billEnvelope = `{"data":{"id":3,"title":"Dinner","totalAmount":100,"operator":"EQUALLY","billDate":"2024-01-15","status":"INCOMPLETE","persons":[{"id":9,"name":"Alice","amount":100,"paymentStatus":"UNPAID","billId":3}]},"message":"ok","status":"SUCCESS","timestamp":"2024-01-15T12:00:00Z"}`

func TestRequestsHitDocumentedRoutes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantURI    string
	}{
		{"list", func(c *Client) error { _, err := c.ListBills(ctx); return err }, http.MethodGet, "/api/v1/bills"},
		{"get", func(c *Client) error { _, err := c.GetBill(ctx, 3); return err }, http.MethodGet, "/api/v1/bills/3"},
		{"create", func(c *Client) error { _, err := c.CreateBill(ctx, api.BillCreateRequest{Title: "x"}); return err }, http.MethodPost, "/api/v1/bills"},
		{"update", func(c *Client) error { _, err := c.UpdateBill(ctx, 3, api.BillUpdateRequest{}); return err }, http.MethodPut, "/api/v1/bills/3"},
		{"delete", func(c *Client) error { return c.DeleteBill(ctx, 3) }, http.MethodDelete, "/api/v1/bills/3"},
		{"by status", func(c *Client) error { _, err := c.ListBillsByStatus(ctx, api.StatusComplete); return err }, http.MethodGet, "/api/v1/bills/status/COMPLETE"},
		{"search", func(c *Client) error { _, err := c.SearchBills(ctx, "team dinner"); return err }, http.MethodGet, "/api/v1/bills/search?title=team+dinner"},
		{"pay", func(c *Client) error { _, err := c.PayBill(ctx, 3, 9); return err }, http.MethodPatch, "/api/v1/bills/3/pay?personId=9"},
		{"refresh status", func(c *Client) error { _, err := c.RefreshBillStatus(ctx, 3); return err }, http.MethodPut, "/api/v1/bills/3/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seen := mockBackend(t, http.StatusOK, `{"data":null,"message":"ok","status":"SUCCESS"}`)

			require.NoError(t, tt.call(c))

			require.Len(t, *seen, 1)
			got := (*seen)[0]
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantURI, got.URI)
			_, err := uuid.Parse(got.RequestID)
			assert.NoError(t, err, "request id should be a uuid")
		})
	}
}

func TestCreateBillEncodesPayload(t *testing.T) {
	c, seen := mockBackend(t, http.StatusCreated, billEnvelope)
	share := decimal.RequireFromString("60.5")

	bill, err := c.CreateBill(context.Background(), api.BillCreateRequest{
		Title:       "Dinner",
		TotalAmount: decimal.NewFromInt(100),
		Operator:    api.OperatorCustom,
		BillDate:    "2024-01-15",
		Persons: []api.PersonCreateRequest{
			{Name: "Alice", Amount: &share},
			{Name: "Bob"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), bill.ID)
	require.Len(t, bill.Persons, 1)
	assert.True(t, bill.Persons[0].Amount.Equal(decimal.NewFromInt(100)))

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte((*seen)[0].Body), &sent))
	assert.EqualValues(t, 100, sent["totalAmount"])
	persons := sent["persons"].([]any)
	assert.EqualValues(t, 60.5, persons[0].(map[string]any)["amount"])
	assert.NotContains(t, persons[1].(map[string]any), "amount")
}

func TestErrorResponseBecomesAPIError(t *testing.T) {
	c, _ := mockBackend(t, http.StatusBadRequest,
		`{"error":{"code":"VALIDATION_ERROR","message":"Invalid input data","details":["title is a required field"]},"status":"ERROR","timestamp":"2024-01-15T12:00:00Z"}`)

	_, err := c.ListBills(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, api.CodeValidation, apiErr.Code)
	assert.Equal(t, []string{"title is a required field"}, apiErr.Details)

	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid input data", msg)
}

func TestErrorWithoutBody(t *testing.T) {
	c, _ := mockBackend(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	err := c.DeleteBill(context.Background(), 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	_, ok := ServerMessage(err)
	assert.False(t, ok)
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, WithTimeout(time.Second)).ListBills(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	_, ok := ServerMessage(err)
	assert.False(t, ok)
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").baseURL)
	assert.Equal(t, "http://h/api/v1", New("http://h/api/v1/").baseURL)
}

func TestAgainstRealServer(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	v, err := validation.New()
	require.NoError(t, err)

	ts := httptest.NewServer(httpapi.NewServer(service.NewBillService(store, v)).Handler())
	t.Cleanup(ts.Close)
	c := New(ts.URL + "/api/v1")
	ctx := context.Background()

	bill, err := c.CreateBill(ctx, api.BillCreateRequest{
		Title:       "Pizza",
		TotalAmount: decimal.NewFromInt(30),
		Operator:    api.OperatorEqually,
		BillDate:    "2024-02-01",
		Persons:     []api.PersonCreateRequest{{Name: "Alice"}, {Name: "Bob"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "15.00", bill.Persons[0].Amount.StringFixed(2))

	bill, err = c.PayBill(ctx, bill.ID, bill.Persons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, api.PaymentPaid, bill.Persons[0].PaymentStatus)

	found, err := c.SearchBills(ctx, "PIZ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = c.GetBill(ctx, bill.ID+100)
	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "Bill not found with id")

	require.NoError(t, c.DeleteBill(ctx, bill.ID))
	all, err := c.ListBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
