package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/reconcile"
)

const santander = "../../testdata/santander.csv"

// reconcileProject has two payments that match santander.csv and one that
// does not.
func reconcileProject(t *testing.T) string {
	t.Helper()
	dir := projectWithMembers(t)
	mustRun(t, "tx", "add", "PAYMENT", "20", "-m", "1", "--repo", dir)
	mustRun(t, "tx", "add", "ADVANCE", "15.50", "-m", "2", "--repo", dir)
	mustRun(t, "tx", "add", "PAYMENT", "99", "-m", "1", "--repo", dir)
	return dir
}

func copyToImport(t *testing.T, dir string) {
	t.Helper()
	data, err := os.ReadFile(santander)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "santander.csv"), data, 0o644))
}

func findTx(txs []model.Transaction, amount string) model.Transaction {
	for _, tx := range txs {
		if tx.Amount.StringFixed(2) == amount {
			return tx
		}
	}
	return model.Transaction{}
}

func TestReconcile_Preview(t *testing.T) {
	dir := reconcileProject(t)
	copyToImport(t, dir)

	out := mustRun(t, "reconcile", "--repo", dir)
	assert.Equal(t, 2, strings.Count(out, string(reconcile.ConfidenceHigh)))
	assert.Contains(t, out, string(reconcile.ConfidenceNone))
	assert.Contains(t, out, "MARTA LOPEZ GARCIA concepto bote")
	assert.Contains(t, out, "Jon Ander Etxeberria")

	// Nothing was written and the statement stays in import/.
	for _, tx := range listTransactions(t, dir) {
		assert.False(t, tx.Verified)
	}
	_, err := os.Stat(filepath.Join(dir, "import", "santander.csv"))
	assert.NoError(t, err)
}

func TestReconcile_ConfirmAll(t *testing.T) {
	dir := reconcileProject(t)
	copyToImport(t, dir)

	out := mustRun(t, "reconcile", "--confirm-all", "--repo", dir)
	assert.Contains(t, out, "Confirmed 2, failed 0")

	txs := listTransactions(t, dir)
	marta := findTx(txs, "20.00")
	assert.True(t, marta.Verified)
	assert.True(t, strings.HasPrefix(marta.BankID, "bank_"), marta.BankID)
	jon := findTx(txs, "15.50")
	assert.True(t, jon.Verified)
	assert.NotEqual(t, marta.BankID, jon.BankID)
	assert.False(t, findTx(txs, "99.00").Verified)

	_, err := os.Stat(filepath.Join(dir, "import", "processed", "santander.csv"))
	assert.NoError(t, err, "statement should be marked processed")
	_, err = os.Stat(filepath.Join(dir, "import", "santander.csv"))
	assert.True(t, os.IsNotExist(err))

	out = mustRun(t, "balance", "--repo", dir)
	assert.Contains(t, out, "Pot:        35.50")
	assert.Contains(t, out, "Pending:    99.00")

	out = mustRun(t, "reconcile", "--repo", dir)
	assert.Contains(t, out, "No statements to reconcile")
}

func TestReconcile_BankMovementNotReused(t *testing.T) {
	dir := reconcileProject(t)
	mustRun(t, "reconcile", santander, "--confirm-all", "--repo", dir)

	// A second 20.00 payment by the same member must not claim the bank
	// row the first one is already linked to.
	mustRun(t, "tx", "add", "PAYMENT", "20", "-m", "1", "-d", "again", "--repo", dir)
	out := mustRun(t, "reconcile", santander, "--repo", dir)
	assert.NotContains(t, out, string(reconcile.ConfidenceHigh))
}

func TestReconcile_ConfirmOne(t *testing.T) {
	dir := reconcileProject(t)
	jon := findTx(listTransactions(t, dir), "15.50")

	out := mustRun(t, "reconcile", santander, "--confirm", jon.TransactionID, "--repo", dir)
	assert.Contains(t, out, "Confirmed 1, failed 0")

	txs := listTransactions(t, dir)
	assert.True(t, findTx(txs, "15.50").Verified)
	assert.False(t, findTx(txs, "20.00").Verified)

	// The statement was passed explicitly and is left where it is.
	_, err := os.Stat(santander)
	assert.NoError(t, err)
}

func TestReconcile_ConfirmUnmatched(t *testing.T) {
	dir := reconcileProject(t)
	unmatched := findTx(listTransactions(t, dir), "99.00")

	_, err := runBote(t, "reconcile", santander, "--confirm", unmatched.TransactionID, "--repo", dir)
	assert.ErrorIs(t, err, reconcile.ErrNoMatch)

	_, err = runBote(t, "reconcile", santander, "--confirm", "PXX010101-ZZZZ", "--repo", dir)
	assert.ErrorIs(t, err, reconcile.ErrNotInSession)
}

func TestReconcile_BadStatement(t *testing.T) {
	dir := reconcileProject(t)
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("foo;bar\n1;2\n"), 0o644))

	_, err := runBote(t, "reconcile", bad, "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}
