package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// memStore is an in-memory store.Transactions.
type memStore struct {
	txs     []model.Transaction
	seq     int
	failAll error
}

func (m *memStore) ListTransactions(context.Context) ([]model.Transaction, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := make([]model.Transaction, len(m.txs))
	for i := range m.txs {
		out[len(m.txs)-1-i] = m.txs[i]
	}
	return out, nil
}

func (m *memStore) CreateTransaction(_ context.Context, nt store.NewTransaction) (string, error) {
	if m.failAll != nil {
		return "", m.failAll
	}
	m.seq++
	docID := fmt.Sprintf("doc%d", m.seq)
	m.txs = append(m.txs, model.Transaction{
		ID:            docID,
		TransactionID: nt.TransactionID,
		Type:          nt.Type,
		Amount:        nt.Amount,
		MemberID:      nt.MemberID,
		Verified:      nt.Verified,
		BankID:        nt.BankID,
		Description:   nt.Description,
		IsGuest:       nt.IsGuest,
		Timestamp:     time.Date(2026, 2, 17, 0, 0, m.seq, 0, time.UTC),
	})
	return docID, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, id string, patch store.TransactionPatch) error {
	if m.failAll != nil {
		return m.failAll
	}
	for i := range m.txs {
		if m.txs[i].ID == id {
			m.txs[i] = patch.Apply(m.txs[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteTransaction(_ context.Context, id string) error {
	if m.failAll != nil {
		return m.failAll
	}
	for i := range m.txs {
		if m.txs[i].ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) TransactionIDSuffixExists(_ context.Context, suffix string) (bool, error) {
	if m.failAll != nil {
		return false, m.failAll
	}
	for _, tx := range m.txs {
		if strings.HasSuffix(tx.TransactionID, "-"+suffix) {
			return true, nil
		}
	}
	return false, nil
}

// mockMembers is a fixed roster.
type mockMembers map[int]string

func (m mockMembers) Exists(id int) bool {
	_, ok := m[id]
	return ok
}

func (m mockMembers) Alias(id int) string {
	if a, ok := m[id]; ok && a != "" {
		return a
	}
	return model.UnknownAlias
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}
