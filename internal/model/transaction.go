package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry. The sign of its economic
// effect comes from the type, never from the amount.
type TransactionType string

const (
	TypeConsumption  TransactionType = "CONSUMPTION"
	TypePayment      TransactionType = "PAYMENT"
	TypeAdvance      TransactionType = "ADVANCE"
	TypePurchaseBote TransactionType = "PURCHASE_BOTE"
)

// TransactionTypes lists every known type in display order.
var TransactionTypes = []TransactionType{TypeConsumption, TypePayment, TypeAdvance, TypePurchaseBote}

// ParseTransactionType converts a stored string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeConsumption, TypePayment, TypeAdvance, TypePurchaseBote:
		return true
	}
	return false
}

// DefaultVerified is the verified flag a new transaction of this type gets
// when the creator does not override it.
func (t TransactionType) DefaultVerified() bool {
	return t == TypeConsumption || t == TypePurchaseBote
}

// IsCashIn reports whether the type represents money claimed into the pot.
func (t TransactionType) IsCashIn() bool {
	return t == TypePayment || t == TypeAdvance
}

// Transaction is one record in the shared ledger.
type Transaction struct {
	ID            string          // opaque, assigned by the store
	TransactionID string          // human-readable code, see package id
	Type          TransactionType //nolint:revive
	Amount        decimal.Decimal // always >= 0
	MemberID      int
	Verified      bool
	BankID        string // set once linked to a bank statement row
	Description   string
	Timestamp     time.Time // assigned by the store
	IsGuest       bool      // consumption on behalf of a guest
}

// Pending reports whether the transaction is cash claimed but not yet
// confirmed against the bank.
func (t Transaction) Pending() bool {
	return !t.Verified && t.Type.IsCashIn()
}
