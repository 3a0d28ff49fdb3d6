package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/cleared-dev/bote/internal/logger"
	"github.com/cleared-dev/bote/internal/store"
)

var (
	// ErrNotInSession is returned when confirming a transaction the working
	// set does not hold.
	ErrNotInSession = errors.New("transaction not in reconciliation set")
	// ErrNoMatch is returned when confirming a record without a bank match.
	ErrNoMatch = errors.New("record has no bank match")
)

// Updater applies a patch to one transaction.
type Updater interface {
	UpdateTransaction(ctx context.Context, id string, patch store.TransactionPatch) error
}

// Failure is a record whose verification write failed.
type Failure struct {
	Record Record
	Err    error
}

// Outcome summarizes a bulk confirmation.
type Outcome struct {
	Confirmed []Record
	Failed    []Failure
}

// Err joins every failure, or returns nil.
func (o Outcome) Err() error {
	errs := make([]error, 0, len(o.Failed))
	for _, f := range o.Failed {
		errs = append(errs, fmt.Errorf("confirming %s: %w", f.Record.Transaction.TransactionID, f.Err))
	}
	return errors.Join(errs...)
}

// Session is the working set of one reconciliation run. Confirmed records
// leave the set; failed ones stay so they can be retried.
type Session struct {
	updater Updater
	records []Record
}

// NewSession starts a session over records.
func NewSession(updater Updater, records []Record) *Session {
	return &Session{updater: updater, records: append([]Record(nil), records...)}
}

// Records returns the records still awaiting a decision.
func (s *Session) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Matched returns the records with a high-confidence match.
func (s *Session) Matched() []Record {
	var out []Record
	for _, r := range s.records {
		if r.Matched() {
			out = append(out, r)
		}
	}
	return out
}

// Confirm verifies the record for the transaction with document ID id.
func (s *Session) Confirm(ctx context.Context, id string) error {
	for _, r := range s.records {
		if r.Transaction.ID != id {
			continue
		}
		if !r.Matched() {
			return fmt.Errorf("confirming %s: %w", r.Transaction.TransactionID, ErrNoMatch)
		}
		if err := s.apply(ctx, r); err != nil {
			return fmt.Errorf("confirming %s: %w", r.Transaction.TransactionID, err)
		}
		return nil
	}
	return fmt.Errorf("confirming %s: %w", id, ErrNotInSession)
}

// ConfirmAll verifies every matched record, one write at a time.
func (s *Session) ConfirmAll(ctx context.Context) Outcome {
	var out Outcome
	for _, r := range s.Matched() {
		if err := s.apply(ctx, r); err != nil {
			out.Failed = append(out.Failed, Failure{Record: r, Err: err})
			continue
		}
		out.Confirmed = append(out.Confirmed, r)
	}
	return out
}

func (s *Session) apply(ctx context.Context, r Record) error {
	log := logger.FromContext(ctx)
	err := s.updater.UpdateTransaction(ctx, r.Transaction.ID, store.VerifyPatch(r.BankMatch.BankID))
	if err != nil {
		log.Warn().Err(err).
			Str("transaction_id", r.Transaction.TransactionID).
			Str("bank_id", r.BankMatch.BankID).
			Msg("verification failed")
		return err
	}
	log.Info().
		Str("transaction_id", r.Transaction.TransactionID).
		Str("bank_id", r.BankMatch.BankID).
		Msg("transaction verified")
	s.remove(r.Transaction.ID)
	return nil
}

func (s *Session) remove(id string) {
	for i, r := range s.records {
		if r.Transaction.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}
