// Package filestore keeps the ledger as CSV files inside the project
// directory, so every change can be committed to git.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/bote/internal/journal"
	"github.com/cleared-dev/bote/internal/members"
	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// Dir is the ledger directory relative to the project root.
const Dir = "ledger"

const (
	transactionsFile = "transactions.csv"
	membersFile      = "members.csv"
)

// Store implements store.Store on CSV files. Each mutation rewrites the
// whole file through a temp file and rename.
type Store struct {
	root  string
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides document ID generation.
func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New opens the store rooted at the project directory root.
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the ledger directory with empty files, keeping existing ones.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(s.root, Dir), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	if _, err := os.Stat(s.path(transactionsFile)); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeTransactions(nil); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.path(membersFile)); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeMembers(nil); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the files the store writes, relative to the root.
func Paths() []string {
	return []string{filepath.Join(Dir, transactionsFile), filepath.Join(Dir, membersFile)}
}

// ListTransactions returns every transaction, newest first.
func (s *Store) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs, nil
}

// CreateTransaction appends a transaction and returns its document ID.
func (s *Store) CreateTransaction(_ context.Context, nt store.NewTransaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.readTransactions()
	if err != nil {
		return "", err
	}
	docID := s.newID()
	txs = append(txs, model.Transaction{
		ID:            docID,
		TransactionID: nt.TransactionID,
		Type:          nt.Type,
		Amount:        nt.Amount,
		MemberID:      nt.MemberID,
		Verified:      nt.Verified,
		BankID:        nt.BankID,
		Description:   nt.Description,
		Timestamp:     s.now().UTC(),
		IsGuest:       nt.IsGuest,
	})
	if err := s.writeTransactions(txs); err != nil {
		return "", err
	}
	return docID, nil
}

// UpdateTransaction applies patch to one transaction.
func (s *Store) UpdateTransaction(_ context.Context, docID string, patch store.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.readTransactions()
	if err != nil {
		return err
	}
	i := indexOf(txs, docID)
	if i < 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, docID)
	}
	txs[i] = patch.Apply(txs[i])
	return s.writeTransactions(txs)
}

// DeleteTransaction removes one transaction. There is no tombstone.
func (s *Store) DeleteTransaction(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.readTransactions()
	if err != nil {
		return err
	}
	i := indexOf(txs, docID)
	if i < 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, docID)
	}
	txs = append(txs[:i], txs[i+1:]...)
	return s.writeTransactions(txs)
}

// TransactionIDSuffixExists reports whether any transaction ID ends with
// "-" + suffix.
func (s *Store) TransactionIDSuffixExists(_ context.Context, suffix string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.readTransactions()
	if err != nil {
		return false, err
	}
	for _, tx := range txs {
		if strings.HasSuffix(tx.TransactionID, "-"+suffix) {
			return true, nil
		}
	}
	return false, nil
}

// ListMembers returns the roster in file order.
func (s *Store) ListMembers(_ context.Context) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMembers()
}

// PutMember inserts or replaces a member by ID.
func (s *Store) PutMember(_ context.Context, m model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.readMembers()
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == m.ID {
			list[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, m)
	}
	return s.writeMembers(list)
}

// Close is a no-op.
func (s *Store) Close(_ context.Context) error { return nil }

func indexOf(txs []model.Transaction, docID string) int {
	for i, tx := range txs {
		if tx.ID == docID {
			return i
		}
	}
	return -1
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, Dir, name)
}

func (s *Store) readTransactions() ([]model.Transaction, error) {
	f, err := os.Open(s.path(transactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w: %w", store.ErrUnavailable, err)
	}
	defer f.Close()

	txs, err := journal.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return txs, nil
}

func (s *Store) writeTransactions(txs []model.Transaction) error {
	var buf bytes.Buffer
	if err := journal.WriteTransactions(&buf, txs); err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}
	return s.replace(transactionsFile, buf.Bytes())
}

func (s *Store) readMembers() ([]model.Member, error) {
	f, err := os.Open(s.path(membersFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening members: %w: %w", store.ErrUnavailable, err)
	}
	defer f.Close()

	list, err := members.ReadMembers(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return list, nil
}

func (s *Store) writeMembers(list []model.Member) error {
	var buf bytes.Buffer
	if err := members.WriteMembers(&buf, list); err != nil {
		return fmt.Errorf("encoding members: %w", err)
	}
	return s.replace(membersFile, buf.Bytes())
}

// replace writes data to name atomically.
func (s *Store) replace(name string, data []byte) error {
	dir := filepath.Join(s.root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w: %w", store.ErrUnavailable, err)
	}
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w: %w", name, store.ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w: %w", name, store.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w: %w", name, store.ErrUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("writing %s: %w: %w", name, store.ErrUnavailable, err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
