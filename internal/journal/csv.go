package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/bote/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,transaction_id,type,amount,member_id,verified,bank_id,description,timestamp,is_guest"

const (
	numFields   = 10
	colID       = 0
	colTxID     = 1
	colType     = 2
	colAmount   = 3
	colMemberID = 4
	colVerified = 5
	colBankID   = 6
	colDesc     = 7
	colTime     = 8
	colGuest    = 9
)

// ReadTransactions reads all rows from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transactions to a writer (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colTxID] = tx.TransactionID
	row[colType] = string(tx.Type)
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colMemberID] = strconv.Itoa(tx.MemberID)
	row[colVerified] = strconv.FormatBool(tx.Verified)
	row[colBankID] = tx.BankID
	row[colDesc] = tx.Description
	if !tx.Timestamp.IsZero() {
		row[colTime] = tx.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if tx.IsGuest {
		row[colGuest] = "true"
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
//
// Decoding is lenient: a bad amount reads as zero, a bad member reference
// as model.NoMember, a bad timestamp as the zero time. One damaged row must
// not hide every balance.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var ts time.Time
	if record[colTime] != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, record[colTime]); err == nil {
			ts = parsed
		}
	}

	verified, _ := strconv.ParseBool(record[colVerified])
	guest, _ := strconv.ParseBool(record[colGuest])

	return model.Transaction{
		ID:            record[colID],
		TransactionID: record[colTxID],
		Type:          model.TransactionType(record[colType]),
		Amount:        model.CoerceAmount(record[colAmount]),
		MemberID:      model.CoerceMemberID(record[colMemberID]),
		Verified:      verified,
		BankID:        record[colBankID],
		Description:   record[colDesc],
		Timestamp:     ts,
		IsGuest:       guest,
	}, nil
}
