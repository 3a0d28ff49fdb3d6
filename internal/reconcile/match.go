// Package reconcile pairs bank statement inflows with unverified payments
// and advances.
//
// Matching is greedy and order dependent: pending transactions are taken in
// the order given and each claims the first statement row that fits. No
// scoring or backtracking is done.
package reconcile

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

// Confidence tags a reconciliation record.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceNone Confidence = "none"
)

// UnknownMember is reported when a transaction's member is not on the roster.
const UnknownMember = "Unknown"

// Record is the proposed outcome for one pending transaction.
type Record struct {
	Transaction      model.Transaction
	MemberName       string
	BankMatch        *model.BankMovement // nil when unmatched
	CleanDescription string
	Confidence       Confidence
}

// Matched reports whether the record found a bank movement.
func (r Record) Matched() bool {
	return r.Confidence == ConfidenceHigh && r.BankMatch != nil
}

// Matcher holds the matching thresholds.
type Matcher struct {
	Tolerance     decimal.Decimal // max absolute amount difference
	MinNameLength int             // shorter candidate names never match
}

// DefaultMatcher returns a Matcher with a 0.01 tolerance and a 3-character
// name floor.
func DefaultMatcher() Matcher {
	return Matcher{
		Tolerance:     decimal.New(1, -2),
		MinNameLength: 3,
	}
}

// Build matches with DefaultMatcher.
func Build(pending []model.Transaction, movements []model.BankMovement, members []model.Member, all []model.Transaction) []Record {
	return DefaultMatcher().Build(pending, movements, members, all)
}

// Build yields one Record per pending transaction. Bank IDs already stored
// on any transaction in all are never matched again.
func (m Matcher) Build(pending []model.Transaction, movements []model.BankMovement, members []model.Member, all []model.Transaction) []Record {
	byID := make(map[int]model.Member, len(members))
	for _, mem := range members {
		byID[mem.ID] = mem
	}

	linked := make(map[string]bool)
	for _, tx := range all {
		if tx.BankID != "" {
			linked[tx.BankID] = true
		}
	}
	claimed := make(map[string]bool)

	records := make([]Record, 0, len(pending))
	for _, tx := range pending {
		if !tx.Pending() {
			continue
		}

		rec := Record{
			Transaction: tx,
			MemberName:  UnknownMember,
			Confidence:  ConfidenceNone,
		}
		var names []string
		if mem, ok := byID[tx.MemberID]; ok {
			rec.MemberName = mem.Name
			names = mem.MatchNames()
		}

		for i := range movements {
			mv := movements[i]
			if claimed[mv.BankID] || linked[mv.BankID] {
				continue
			}
			if !m.amountMatches(tx.Amount, mv.Amount) || !m.nameMatches(mv.Description, names) {
				continue
			}
			claimed[mv.BankID] = true
			rec.BankMatch = &mv
			rec.CleanDescription = CleanDescription(mv.Description, names)
			rec.Confidence = ConfidenceHigh
			break
		}
		records = append(records, rec)
	}
	return records
}

func (m Matcher) amountMatches(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(m.Tolerance)
}

func (m Matcher) nameMatches(desc string, names []string) bool {
	for _, n := range names {
		if utf8.RuneCountInString(n) < m.MinNameLength {
			continue
		}
		if indexFold(desc, n) >= 0 {
			return true
		}
	}
	return false
}

// CleanDescription trims desc to start at the earliest occurrence of any of
// names. Without an occurrence desc is returned unchanged.
func CleanDescription(desc string, names []string) string {
	best := -1
	for _, n := range names {
		if i := indexFold(desc, n); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return desc
	}
	return desc[best:]
}

// indexFold is a case-insensitive strings.Index returning a byte offset
// into s.
func indexFold(s, substr string) int {
	if substr == "" {
		return 0
	}
	n := utf8.RuneCountInString(substr)
	for i := range s {
		end := i
		for k := 0; k < n && end < len(s); k++ {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		if strings.EqualFold(s[i:end], substr) {
			return i
		}
	}
	return -1
}
