// Package journal records ledger mutations: new transactions, admin edits,
// verification toggles and deletions.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/id"
	"github.com/cleared-dev/bote/internal/ledger"
	"github.com/cleared-dev/bote/internal/logger"
	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// MemberDirectory resolves members for validation and ID aliases.
type MemberDirectory interface {
	MemberChecker
	Alias(id int) string
}

// Service provides the mutation path for transactions.
type Service struct {
	store   store.Transactions
	ids     *id.Generator
	members MemberDirectory
	now     func() time.Time
}

// NewService creates a journal Service.
func NewService(st store.Transactions, ids *id.Generator, members MemberDirectory) *Service {
	return &Service{store: st, ids: ids, members: members, now: time.Now}
}

// AddParams holds parameters for recording a transaction.
type AddParams struct {
	Type        model.TransactionType
	Amount      decimal.Decimal
	MemberID    int
	Description string
	IsGuest     bool
	Verified    *bool     // nil applies the type's default
	Date        time.Time // date embedded in the transaction ID; zero means now
}

// Add validates and records a new transaction. The returned transaction
// carries the store-assigned ID; its timestamp is set by the store.
func (s *Service) Add(ctx context.Context, p AddParams) (model.Transaction, error) {
	if verrs := ValidateAdd(p, s.members); len(verrs) > 0 {
		return model.Transaction{}, verrs
	}

	verified := p.Type.DefaultVerified()
	if p.Verified != nil {
		verified = *p.Verified
	}

	date := p.Date
	if date.IsZero() {
		date = s.now()
	}

	txID, err := s.ids.Generate(ctx, p.Type, s.members.Alias(p.MemberID), date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("generating transaction ID: %w", err)
	}

	nt := store.NewTransaction{
		TransactionID: txID,
		Type:          p.Type,
		Amount:        p.Amount,
		MemberID:      p.MemberID,
		Verified:      verified,
		Description:   p.Description,
		IsGuest:       p.IsGuest,
	}
	docID, err := s.store.CreateTransaction(ctx, nt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("creating transaction %s: %w", txID, err)
	}

	logger.FromContext(ctx).Debug().
		Str("id", docID).
		Str("transaction_id", txID).
		Str("type", string(p.Type)).
		Str("amount", p.Amount.StringFixed(2)).
		Int("member_id", p.MemberID).
		Msg("transaction created")

	return model.Transaction{
		ID:            docID,
		TransactionID: txID,
		Type:          nt.Type,
		Amount:        nt.Amount,
		MemberID:      nt.MemberID,
		Verified:      nt.Verified,
		Description:   nt.Description,
		IsGuest:       nt.IsGuest,
	}, nil
}

// Update applies an admin edit. Changing the type does not re-derive the
// verified flag.
func (s *Service) Update(ctx context.Context, docID string, patch store.TransactionPatch) error {
	if patch.Empty() {
		return nil
	}
	if verrs := ValidatePatch(patch, s.members); len(verrs) > 0 {
		return verrs
	}
	if err := s.store.UpdateTransaction(ctx, docID, patch); err != nil {
		return fmt.Errorf("updating transaction %s: %w", docID, err)
	}
	logger.FromContext(ctx).Debug().Str("id", docID).Msg("transaction updated")
	return nil
}

// Delete removes a transaction permanently.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.store.DeleteTransaction(ctx, docID); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", docID, err)
	}
	logger.FromContext(ctx).Debug().Str("id", docID).Msg("transaction deleted")
	return nil
}

// ToggleVerified flips the verified flag and returns the new value. ref is
// a document ID or a transaction ID.
func (s *Service) ToggleVerified(ctx context.Context, ref string) (bool, error) {
	tx, err := s.Get(ctx, ref)
	if err != nil {
		return false, err
	}
	verified := !tx.Verified
	if err := s.store.UpdateTransaction(ctx, tx.ID, store.TransactionPatch{Verified: &verified}); err != nil {
		return false, fmt.Errorf("toggling transaction %s: %w", tx.TransactionID, err)
	}
	logger.FromContext(ctx).Debug().Str("id", tx.ID).Bool("verified", verified).Msg("verification toggled")
	return verified, nil
}

// Verify marks a transaction verified, linking it to bankID when given.
func (s *Service) Verify(ctx context.Context, docID, bankID string) error {
	if err := s.store.UpdateTransaction(ctx, docID, store.VerifyPatch(bankID)); err != nil {
		return fmt.Errorf("verifying transaction %s: %w", docID, err)
	}
	return nil
}

// List returns the current snapshot, newest first.
func (s *Service) List(ctx context.Context) ([]model.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// Get finds a transaction by document ID or by human-readable transaction ID.
func (s *Service) Get(ctx context.Context, ref string) (model.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return model.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == ref || tx.TransactionID == ref {
			return tx, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
}

// Summary derives every balance from a fresh snapshot.
func (s *Service) Summary(ctx context.Context, members []model.Member) (ledger.Snapshot, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return ledger.Summarize(members, txs), nil
}
