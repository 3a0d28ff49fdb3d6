// Package importer turns bank statement exports into BankMovements.
package importer

import (
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

var (
	// ErrMissingColumns means the header lacks a description or amount column.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrEmptyStatement means there are no data rows after the header.
	ErrEmptyStatement = errors.New("no rows after header")
)

// ParseError aborts a reconciliation run; no partial result is returned.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parsing bank statement: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Header keywords, matched case-insensitively by substring.
var (
	descKeywords    = []string{"descrip"}
	amountKeywords  = []string{"import", "amount"}
	dateKeywords    = []string{"finalizaci", "completed date", "date", "fecha"} // priority order
	balanceKeywords = []string{"saldo", "balance"}
	refKeywords     = []string{"referenc", "identific"}
)

type columns struct {
	ref, desc, amount, date, balance int
}

// Parser reads delimited bank exports. The zero value parses dates in UTC.
type Parser struct {
	Location *time.Location
}

// ParseStatement parses a statement with a zero Parser.
func ParseStatement(r io.Reader) ([]model.BankMovement, error) {
	return (&Parser{}).Parse(r)
}

// Parse returns the inflow rows of a statement in file order.
func (p *Parser) Parse(r io.Reader) ([]model.BankMovement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	headerLine, _, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(headerLine) == "" {
		return nil, &ParseError{Err: ErrEmptyStatement}
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectDelimiter(headerLine)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("reading CSV: %w", err)}
	}

	cols, err := locateColumns(records[0])
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(records) < 2 {
		return nil, &ParseError{Err: ErrEmptyStatement}
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	var movements []model.BankMovement
	for _, rec := range records[1:] {
		mv, ok := parseRow(rec, cols, loc)
		if ok {
			movements = append(movements, mv)
		}
	}
	return movements, nil
}

func detectDelimiter(header string) rune {
	if strings.Contains(header, ";") {
		return ';'
	}
	return ','
}

func locateColumns(header []string) (columns, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(clean(h))
	}

	cols := columns{
		ref:     -1,
		desc:    findColumn(names, descKeywords),
		amount:  findColumn(names, amountKeywords),
		date:    findColumn(names, dateKeywords),
		balance: findColumn(names, balanceKeywords),
	}
	for i, n := range names {
		if n == "id" {
			cols.ref = i
			break
		}
	}
	if cols.ref < 0 {
		cols.ref = findColumn(names, refKeywords)
	}

	var missing []string
	if cols.desc < 0 {
		missing = append(missing, "description")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

// findColumn returns the first header containing the earliest keyword.
func findColumn(names, keywords []string) int {
	for _, kw := range keywords {
		for i, n := range names {
			if strings.Contains(n, kw) {
				return i
			}
		}
	}
	return -1
}

func parseRow(rec []string, cols columns, loc *time.Location) (model.BankMovement, bool) {
	amount, ok := parseAmount(field(rec, cols.amount))
	if !ok || !amount.IsPositive() {
		return model.BankMovement{}, false
	}

	rawDate := field(rec, cols.date)
	rawBalance := field(rec, cols.balance)

	bankID := field(rec, cols.ref)
	if bankID == "" {
		bankID = syntheticBankID(rawDate, amount, rawBalance)
	}

	return model.BankMovement{
		BankID:      bankID,
		Amount:      amount.Abs(),
		Description: field(rec, cols.desc),
		Date:        rawDate,
		Timestamp:   parseDate(rawDate, loc),
	}, true
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return clean(rec[i])
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// syntheticBankID derives a stable ID for statements without a reference
// column.
func syntheticBankID(rawDate string, amount decimal.Decimal, rawBalance string) string {
	raw := rawDate + amount.String() + rawBalance
	return "bank_" + base64.StdEncoding.EncodeToString([]byte(raw))
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// parseAmount reads a comma-decimal amount. Trailing text such as a
// currency symbol is ignored.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSuffix(m, "."), "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
