package commands_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bote/internal/id"
	"github.com/cleared-dev/bote/internal/model"
)

func projectWithMembers(t *testing.T) string {
	t.Helper()
	dir := newProject(t)
	mustRun(t, "member", "add", "1", "Marta Lopez Garcia", "--alias", "ML", "--repo", dir)
	mustRun(t, "member", "add", "2", "Jon", "--alias", "JA", "--bizum", "Jon Ander Etxeberria", "--repo", dir)
	return dir
}

func TestTxAdd(t *testing.T) {
	dir := projectWithMembers(t)

	out := mustRun(t, "tx", "add", "payment", "20,5", "-m", "1", "-d", "bizum", "--date", "2026-02-17", "--repo", dir)
	assert.Contains(t, out, "Recorded PML170226-")
	assert.Contains(t, out, "PAYMENT 20.50")

	txs := listTransactions(t, dir)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.True(t, id.Valid(tx.TransactionID), tx.TransactionID)
	assert.Equal(t, model.TypePayment, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("20.5")))
	assert.False(t, tx.Verified)
	assert.Equal(t, "bizum", tx.Description)
	assert.False(t, tx.Timestamp.IsZero())
	assert.NotEmpty(t, tx.ID)
}

func TestTxAdd_VerifiedOverride(t *testing.T) {
	dir := projectWithMembers(t)

	mustRun(t, "tx", "add", "CONSUMPTION", "3", "-m", "2", "--verified=false", "--repo", dir)
	txs := listTransactions(t, dir)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].Verified)
}

func TestTxAdd_Rejected(t *testing.T) {
	dir := projectWithMembers(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown type", []string{"tx", "add", "REFUND", "3", "-m", "1"}, "unknown transaction type"},
		{"bad amount", []string{"tx", "add", "PAYMENT", "abc", "-m", "1"}, "amount"},
		{"unknown member", []string{"tx", "add", "PAYMENT", "3", "-m", "9"}, "unknown member 9"},
		{"guest payment", []string{"tx", "add", "PAYMENT", "3", "-m", "1", "--guest"}, "guest"},
		{"bad date", []string{"tx", "add", "PAYMENT", "3", "-m", "1", "--date", "17/02/2026"}, "YYYY-MM-DD"},
		{"missing member", []string{"tx", "add", "PAYMENT", "3"}, "member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runBote(t, append(tt.args, "--repo", dir)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Empty(t, listTransactions(t, dir))
}

func TestTxList(t *testing.T) {
	dir := projectWithMembers(t)
	mustRun(t, "tx", "add", "PAYMENT", "20", "-m", "1", "--repo", dir)
	mustRun(t, "tx", "add", "CONSUMPTION", "4", "-m", "2", "-d", "gin", "--guest", "--repo", dir)

	out := mustRun(t, "tx", "list", "--repo", dir)
	assert.Contains(t, out, "PAYMENT")
	assert.Contains(t, out, "[guest] gin")

	out = mustRun(t, "tx", "list", "--pending", "--repo", dir)
	assert.Contains(t, out, "PAYMENT")
	assert.NotContains(t, out, "CONSUMPTION")

	out = mustRun(t, "tx", "list", "-m", "2", "--repo", dir)
	assert.Contains(t, out, "CONSUMPTION")
	assert.NotContains(t, out, "PAYMENT")

	out = mustRun(t, "tx", "list", "--to", "2000-01-01", "--repo", dir)
	assert.NotContains(t, out, "PAYMENT")
}

func TestTxEditToggleVerifyDelete(t *testing.T) {
	dir := projectWithMembers(t)
	mustRun(t, "tx", "add", "PAYMENT", "20", "-m", "1", "--repo", dir)
	tx := listTransactions(t, dir)[0]

	mustRun(t, "tx", "edit", tx.TransactionID, "--amount", "25", "--type", "advance", "-d", "fixed", "--repo", dir)
	got := listTransactions(t, dir)[0]
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, model.TypeAdvance, got.Type)
	assert.Equal(t, "fixed", got.Description)
	assert.False(t, got.Verified, "type change keeps the verified flag")

	_, err := runBote(t, "tx", "edit", tx.ID, "--repo", dir)
	assert.ErrorContains(t, err, "nothing to change")

	out := mustRun(t, "tx", "toggle", tx.ID, "--repo", dir)
	assert.Contains(t, out, "verified=true")
	assert.True(t, listTransactions(t, dir)[0].Verified)

	mustRun(t, "tx", "toggle", tx.ID, "--repo", dir)
	mustRun(t, "tx", "verify", tx.TransactionID, "--bank-id", "bank_x", "--repo", dir)
	got = listTransactions(t, dir)[0]
	assert.True(t, got.Verified)
	assert.Equal(t, "bank_x", got.BankID)

	mustRun(t, "tx", "delete", tx.TransactionID, "--repo", dir)
	assert.Empty(t, listTransactions(t, dir))

	_, err = runBote(t, "tx", "delete", tx.TransactionID, "--repo", dir)
	assert.ErrorContains(t, err, "not found")
}

func TestTxCheckout(t *testing.T) {
	dir := projectWithMembers(t)

	out := mustRun(t, "tx", "checkout", "-m", "1",
		"--item", "beer:1,50:2", "--item", "beer:1.50", "--guest-item", "gin:4", "--repo", dir)
	assert.Contains(t, out, "3x beer")
	assert.Contains(t, out, "1x gin")

	txs := listTransactions(t, dir)
	require.Len(t, txs, 2)
	total := txs[0].Amount.Add(txs[1].Amount)
	assert.True(t, total.Equal(decimal.RequireFromString("8.5")))

	out = mustRun(t, "balance", "-m", "1", "--repo", dir)
	assert.Contains(t, out, "Balance:          -8.50")
	assert.Contains(t, out, "Consumed:         4.50 in 1 rounds")

	_, err := runBote(t, "tx", "checkout", "-m", "1", "--repo", dir)
	assert.ErrorContains(t, err, "cart is empty")

	_, err = runBote(t, "tx", "checkout", "-m", "1", "--item", "beer", "--repo", dir)
	assert.ErrorContains(t, err, "product:price")
}

func TestBalance(t *testing.T) {
	dir := projectWithMembers(t)
	mustRun(t, "tx", "add", "CONSUMPTION", "10", "-m", "1", "--repo", dir)
	mustRun(t, "tx", "add", "PAYMENT", "4", "-m", "1", "--repo", dir)
	mustRun(t, "tx", "add", "ADVANCE", "30", "-m", "2", "--verified", "--repo", dir)
	mustRun(t, "tx", "add", "PURCHASE_BOTE", "12", "-m", "2", "--repo", dir)

	out := mustRun(t, "balance", "--repo", dir)
	assert.Contains(t, out, "Pot:        18.00")
	assert.Contains(t, out, "Pending:    4.00")
	assert.Contains(t, out, "Total debt: 6.00")
	assert.Contains(t, out, "-6.00")
	assert.Contains(t, out, "30.00")

	_, err := runBote(t, "balance", "-m", "7", "--repo", dir)
	assert.ErrorContains(t, err, "unknown member 7")
}
