// Package store defines the persistence collaborator the ledger talks to.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

var (
	// ErrUnavailable wraps any failure reaching the backing store.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when a document ID does not exist.
	ErrNotFound = errors.New("transaction not found")
)

// NewTransaction holds the fields a caller supplies on creation. The store
// assigns ID and Timestamp.
type NewTransaction struct {
	TransactionID string
	Type          model.TransactionType
	Amount        decimal.Decimal
	MemberID      int
	Verified      bool
	BankID        string
	Description   string
	IsGuest       bool
}

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Type        *model.TransactionType
	Amount      *decimal.Decimal
	MemberID    *int
	Verified    *bool
	BankID      *string
	Description *string
	IsGuest     *bool
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Type == nil && p.Amount == nil && p.MemberID == nil && p.Verified == nil &&
		p.BankID == nil && p.Description == nil && p.IsGuest == nil
}

// Apply returns tx with the patch applied.
func (p TransactionPatch) Apply(tx model.Transaction) model.Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.MemberID != nil {
		tx.MemberID = *p.MemberID
	}
	if p.Verified != nil {
		tx.Verified = *p.Verified
	}
	if p.BankID != nil {
		tx.BankID = *p.BankID
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.IsGuest != nil {
		tx.IsGuest = *p.IsGuest
	}
	return tx
}

// VerifyPatch marks a transaction verified and links it to a bank row.
func VerifyPatch(bankID string) TransactionPatch {
	verified := true
	p := TransactionPatch{Verified: &verified}
	if bankID != "" {
		p.BankID = &bankID
	}
	return p
}

// Transactions is the transaction half of the store.
type Transactions interface {
	// ListTransactions returns a snapshot ordered by timestamp, newest first.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, tx NewTransaction) (string, error)
	UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) error
	DeleteTransaction(ctx context.Context, id string) error
	// TransactionIDSuffixExists reports whether any transaction ID ends
	// with "-" + suffix.
	TransactionIDSuffixExists(ctx context.Context, suffix string) (bool, error)
}

// Members is the member half of the store.
type Members interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	PutMember(ctx context.Context, m model.Member) error
}

// Store is the full collaborator.
type Store interface {
	Transactions
	Members
	Close(ctx context.Context) error
}
