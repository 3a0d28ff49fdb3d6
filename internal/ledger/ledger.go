// Package ledger derives balances from a snapshot of transactions.
//
// Every function is a pure fold over its input: no caching, no shared
// state. Callers recompute from scratch on each read.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

// MemberBalance returns what the member is owed (positive) or owes
// (negative).
//
// Payments count as soon as they are recorded; advances count only once
// verified. Pot purchases never touch personal balances.
func MemberBalance(memberID int, txs []model.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		if tx.MemberID != memberID {
			continue
		}
		switch tx.Type {
		case model.TypeConsumption:
			balance = balance.Sub(tx.Amount)
		case model.TypePayment:
			balance = balance.Add(tx.Amount)
		case model.TypeAdvance:
			if tx.Verified {
				balance = balance.Add(tx.Amount)
			}
		}
	}
	return balance
}

// PotBalance returns the cash held by the common fund.
func PotBalance(txs []model.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case model.TypePayment, model.TypeAdvance:
			if tx.Verified {
				balance = balance.Add(tx.Amount)
			}
		case model.TypePurchaseBote:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}

// SystemPendingBalance sums every unverified payment and advance.
func SystemPendingBalance(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Pending() {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// MemberPendingPayment sums the member's unverified payments.
func MemberPendingPayment(memberID int, txs []model.Transaction) decimal.Decimal {
	return memberPending(memberID, model.TypePayment, txs)
}

// MemberPendingAdvance sums the member's unverified advances.
func MemberPendingAdvance(memberID int, txs []model.Transaction) decimal.Decimal {
	return memberPending(memberID, model.TypeAdvance, txs)
}

func memberPending(memberID int, typ model.TransactionType, txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.MemberID == memberID && tx.Type == typ && !tx.Verified {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// BalanceFunc resolves a member's balance.
type BalanceFunc func(memberID int) decimal.Decimal

// SystemTotalDebt sums the magnitude of every negative member balance.
// Members in credit contribute nothing.
func SystemTotalDebt(members []model.Member, balance BalanceFunc) decimal.Decimal {
	total := decimal.Zero
	for _, m := range members {
		if b := balance(m.ID); b.IsNegative() {
			total = total.Add(b.Neg())
		}
	}
	return total
}

// BalanceOf adapts MemberBalance over a fixed snapshot to a BalanceFunc.
func BalanceOf(txs []model.Transaction) BalanceFunc {
	return func(memberID int) decimal.Decimal {
		return MemberBalance(memberID, txs)
	}
}

// PendingTransactions returns the unverified payments and advances in
// input order.
func PendingTransactions(txs []model.Transaction) []model.Transaction {
	var pending []model.Transaction
	for _, tx := range txs {
		if tx.Pending() {
			pending = append(pending, tx)
		}
	}
	return pending
}
