// Package mutationlog keeps an append-only record of ledger writes that
// failed, so an admin can retry them by hand.
package mutationlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/bote/internal/reconcile"
)

// Entry is one failed write.
type Entry struct {
	Timestamp     time.Time
	Action        string
	DocID         string
	TransactionID string
	BankID        string
	Error         string
}

// Actions recorded by the CLI.
const (
	ActionVerify = "verify"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Header is the CSV header for failed-mutations.csv.
const Header = "timestamp,action,doc_id,transaction_id,bank_id,error"

// Path is the log file relative to the project root.
const Path = "logs/failed-mutations.csv"

const (
	numFields        = 6
	colTimestamp     = 0
	colAction        = 1
	colDocID         = 2
	colTransactionID = 3
	colBankID        = 4
	colError         = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = e.Action
	row[colDocID] = e.DocID
	row[colTransactionID] = e.TransactionID
	row[colBankID] = e.BankID
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:     ts,
		Action:        record[colAction],
		DocID:         record[colDocID],
		TransactionID: record[colTransactionID],
		BankID:        record[colBankID],
		Error:         record[colError],
	}, nil
}

// FromOutcome turns the failures of a bulk confirmation into entries.
func FromOutcome(at time.Time, out reconcile.Outcome) []Entry {
	entries := make([]Entry, 0, len(out.Failed))
	for _, f := range out.Failed {
		e := Entry{
			Timestamp:     at,
			Action:        ActionVerify,
			DocID:         f.Record.Transaction.ID,
			TransactionID: f.Record.Transaction.TransactionID,
			Error:         f.Err.Error(),
		}
		if f.Record.BankMatch != nil {
			e.BankID = f.Record.BankMatch.BankID
		}
		entries = append(entries, e)
	}
	return entries
}

// Append writes entries to <root>/logs/failed-mutations.csv, creating the
// file and header if needed.
func Append(root string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	path := filepath.Join(root, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening mutation log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries in the log, or nil if it does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, Path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening mutation log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mutation log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
