package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

// MemberSummary is the per-member view of a snapshot.
type MemberSummary struct {
	Member         model.Member
	Balance        decimal.Decimal
	PendingPayment decimal.Decimal
	PendingAdvance decimal.Decimal
}

// Snapshot holds every balance derived from one transaction list.
type Snapshot struct {
	Pot       decimal.Decimal
	Pending   decimal.Decimal
	TotalDebt decimal.Decimal
	Members   []MemberSummary
}

// Summarize derives a Snapshot. Members are reported in input order.
func Summarize(members []model.Member, txs []model.Transaction) Snapshot {
	s := Snapshot{
		Pot:       PotBalance(txs),
		Pending:   SystemPendingBalance(txs),
		TotalDebt: SystemTotalDebt(members, BalanceOf(txs)),
		Members:   make([]MemberSummary, 0, len(members)),
	}
	for _, m := range members {
		s.Members = append(s.Members, MemberSummary{
			Member:         m,
			Balance:        MemberBalance(m.ID, txs),
			PendingPayment: MemberPendingPayment(m.ID, txs),
			PendingAdvance: MemberPendingAdvance(m.ID, txs),
		})
	}
	return s
}

// Consumption is a member's personal consumption statistic.
type Consumption struct {
	Total decimal.Decimal
	Count int
}

// MemberConsumption totals the member's own consumptions. Guest
// consumptions still count as debt but are left out here.
func MemberConsumption(memberID int, txs []model.Transaction) Consumption {
	c := Consumption{Total: decimal.Zero}
	for _, tx := range txs {
		if tx.MemberID != memberID || tx.Type != model.TypeConsumption || tx.IsGuest {
			continue
		}
		c.Total = c.Total.Add(tx.Amount)
		c.Count++
	}
	return c
}

// InRange keeps transactions with from <= timestamp < to. A zero bound is
// open.
func InRange(txs []model.Transaction, from, to time.Time) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txs {
		if !from.IsZero() && tx.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.Timestamp.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
