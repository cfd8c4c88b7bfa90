package cli

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyawswar87/share-mal/internal/draft"
	"github.com/kyawswar87/share-mal/internal/httpapi"
	"github.com/kyawswar87/share-mal/internal/service"
	"github.com/kyawswar87/share-mal/internal/storage/sqlite"
	"github.com/kyawswar87/share-mal/internal/validation"
	"github.com/kyawswar87/share-mal/pkg/api"
)

func newBackend(t *testing.T) string {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	v, err := validation.New()
	require.NoError(t, err)

	ts := httptest.NewServer(httpapi.NewServer(service.NewBillService(store, v)).Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api/v1"
}

// run executes one sharemal invocation against apiURL.
func run(t *testing.T, apiURL string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--api-url", apiURL, "--log-level", "error"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, apiURL string, args ...string) string {
	t.Helper()
	stdout, stderr, err := run(t, apiURL, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return stdout
}

func TestCreateListShow(t *testing.T) {
	url := newBackend(t)

	out := mustRun(t, url, "create", "-t", "Dinner", "--total", "100", "--date", "2024-03-01",
		"-p", "Alice", "-p", "Bob", "-p", "Carol")
	assert.Equal(t, "Created bill \"Dinner\"\n", out)

	out = mustRun(t, url, "list")
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "Split Equally")
	assert.Contains(t, out, "INCOMPLETE")
	assert.Contains(t, out, "0/3")

	out = mustRun(t, url, "show", "1")
	assert.Contains(t, out, "1 Dinner")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "33.33")
	assert.Contains(t, out, "33.34")
	assert.Contains(t, out, "outstanding 100.00")
}

func TestListFilters(t *testing.T) {
	url := newBackend(t)
	mustRun(t, url, "create", "-t", "Dinner", "--total", "20", "-p", "Alice")
	mustRun(t, url, "create", "-t", "Groceries", "--total", "20", "-p", "Alice")

	out := mustRun(t, url, "list", "--search", "DIN")
	assert.Contains(t, out, "Dinner")
	assert.NotContains(t, out, "Groceries")

	out = mustRun(t, url, "list", "--status", "complete")
	assert.Equal(t, "No bills found.\n", out)

	// search wins over status
	out = mustRun(t, url, "list", "--status", "COMPLETE", "--search", "groc")
	assert.Contains(t, out, "Groceries")

	_, _, err := run(t, url, "list", "--status", "settled")
	assert.Error(t, err)
}

func TestCreateReportsFieldErrors(t *testing.T) {
	url := newBackend(t)

	_, stderr, err := run(t, url, "create", "-p", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 invalid field(s)")
	assert.Contains(t, stderr, "title: Bill title is required")
	assert.Contains(t, stderr, "totalAmount: Total amount is required")

	assert.Equal(t, "No bills found.\n", mustRun(t, url, "list"))
}

func TestCreateCustomSplit(t *testing.T) {
	url := newBackend(t)

	mustRun(t, url, "create", "-t", "Taxi", "--total", "30", "--split", "custom", "-p", "Alice=10", "-p", "Bob=20")
	out := mustRun(t, url, "show", "1")
	assert.Contains(t, out, "Custom Amounts")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "20.00")

	_, _, err := run(t, url, "create", "-t", "Lunch", "--total", "30", "--split", "custom", "-p", "Alice=10", "-p", "Bob=10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not equal total bill amount (30.00)")

	_, stderr, err := run(t, url, "create", "-t", "Lunch", "--total", "30", "--split", "custom", "-p", "Alice")
	require.Error(t, err)
	assert.Contains(t, stderr, "persons[0].amount: Amount is required for custom split")
}

func TestEditBill(t *testing.T) {
	url := newBackend(t)
	mustRun(t, url, "create", "-t", "Dinner", "--total", "100", "-p", "Alice", "-p", "Bob")

	assert.Equal(t, "Updated bill 1\n", mustRun(t, url, "edit", "1", "--total", "50"))
	out := mustRun(t, url, "show", "1")
	assert.Contains(t, out, "25.00")
	assert.Contains(t, out, "Bob")

	mustRun(t, url, "edit", "1", "-t", "Brunch", "-p", "Zoe")
	out = mustRun(t, url, "show", "1")
	assert.Contains(t, out, "Brunch")
	assert.Contains(t, out, "Zoe")
	assert.NotContains(t, out, "Alice")
	assert.Contains(t, out, "50.00")

	_, _, err := run(t, url, "edit", "7", "-t", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bill not found with id: 7")
}

func TestPayAndRefreshStatus(t *testing.T) {
	url := newBackend(t)
	mustRun(t, url, "create", "-t", "Dinner", "--total", "40", "-p", "Alice", "-p", "Bob")

	assert.Equal(t, "Alice is now PAID (bill INCOMPLETE)\n", mustRun(t, url, "pay", "1", "1"))
	assert.Equal(t, "Bob is now PAID (bill COMPLETE)\n", mustRun(t, url, "pay", "1", "2"))
	assert.Contains(t, mustRun(t, url, "list"), "2/2")
	assert.Equal(t, "Bill 1 is COMPLETE\n", mustRun(t, url, "refresh-status", "1"))

	assert.Equal(t, "Bob is now UNPAID (bill INCOMPLETE)\n", mustRun(t, url, "pay", "1", "2"))

	_, _, err := run(t, url, "pay", "1", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Person not found with id: 99")
}

func TestDeleteBill(t *testing.T) {
	url := newBackend(t)
	mustRun(t, url, "create", "-t", "Dinner", "--total", "40", "-p", "Alice")

	assert.Equal(t, "Deleted bill 1\n", mustRun(t, url, "delete", "1"))

	_, _, err := run(t, url, "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bill not found with id: 1")

	_, _, err = run(t, url, "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bill not found with id: 1")
}

func TestSplitPreview(t *testing.T) {
	url := newBackend(t)

	out := mustRun(t, url, "split", "100", "Alice", "Bob", "Carol")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Carol")
	assert.Contains(t, out, "33.34")
	assert.Contains(t, out, "99.99")

	out = mustRun(t, url, "split", "10.01", "--people", "2")
	assert.Contains(t, out, "Person 2")
	assert.Contains(t, out, "5.01")
	assert.Contains(t, out, "5.00")

	_, _, err := run(t, url, "split", "100")
	assert.Error(t, err)
	_, _, err = run(t, url, "split", "0", "Alice")
	assert.Error(t, err)
	_, _, err = run(t, url, "split", "lots", "Alice")
	assert.Error(t, err)
}

func TestInvalidArguments(t *testing.T) {
	url := newBackend(t)

	_, _, err := run(t, url, "show", "abc")
	require.Error(t, err)
	assert.Equal(t, "invalid bill id: abc", err.Error())

	_, _, err = run(t, url, "pay", "1", "-3")
	assert.Error(t, err)

	_, _, err = run(t, url, "create", "-t", "X", "--total", "1", "-p", "A", "--split", "half")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--split")
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]api.OperatorType{
		"equal":   api.OperatorEqually,
		"EQUALLY": api.OperatorEqually,
		" custom": api.OperatorCustom,
	}
	for in, want := range tests {
		got, err := parseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseStrategy("")
	assert.Error(t, err)
}

func TestWithParticipants(t *testing.T) {
	base := draft.New(fixedDay).SetTotal("90")

	d := withParticipants(base, []string{"Alice", "Bob=12", "Carol"})
	require.Len(t, d.Participants, 3)
	assert.Equal(t, []string{"30.00", "30.00", "30.00"}, d.Shares())
	assert.Equal(t, "Bob", d.Participants[1].Name)

	d = withParticipants(base.SetStrategy(api.OperatorCustom), []string{"Alice=40", " Bob = 50 "})
	assert.Equal(t, []string{"40", "50"}, d.Shares())
	assert.Equal(t, "Bob", d.Participants[1].Name)
	assert.Equal(t, "90.00", d.CustomTotal())

	d = withParticipants(base, []string{"Solo"})
	assert.Equal(t, []string{"90.00"}, d.Shares())
	assert.Len(t, base.Participants, 1)
}

var fixedDay = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
