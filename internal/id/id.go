package id

import (
	"fmt"
	"regexp"
	"time"

	"github.com/cleared-dev/bote/internal/model"
)

const (
	suffixLen      = 4
	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	dateLayout     = "020106" // DDMMYY
)

var transactionIDPattern = regexp.MustCompile(`^[CPABX][A-Za-z]{2}\d{6}-[A-Z0-9]{4}$`)

// TypeLetter maps a transaction type to its ID letter. Unknown types map to 'X'.
func TypeLetter(t model.TransactionType) string {
	switch t {
	case model.TypeConsumption:
		return "C"
	case model.TypePayment:
		return "P"
	case model.TypeAdvance:
		return "A"
	case model.TypePurchaseBote:
		return "B"
	default:
		return "X"
	}
}

// Prefix returns the deterministic part of a transaction ID, e.g.
// "PMA170226-".
func Prefix(t model.TransactionType, alias string, date time.Time) string {
	if alias == "" {
		alias = model.UnknownAlias
	}
	return TypeLetter(t) + alias + date.Format(dateLayout) + "-"
}

// FormatTransactionID returns an ID like "PMA170226-K3Z9".
func FormatTransactionID(t model.TransactionType, alias string, date time.Time, suffix string) string {
	return Prefix(t, alias, date) + suffix
}

// Valid reports whether s is a well-formed transaction ID.
func Valid(s string) bool {
	return transactionIDPattern.MatchString(s)
}

// Parts is a decoded transaction ID.
type Parts struct {
	Letter string
	Alias  string
	Date   time.Time
	Suffix string
}

// Parse decodes a transaction ID.
func Parse(s string) (Parts, error) {
	if !Valid(s) {
		return Parts{}, fmt.Errorf("invalid transaction ID format: %q", s)
	}
	date, err := time.Parse(dateLayout, s[3:9])
	if err != nil {
		return Parts{}, fmt.Errorf("invalid date in transaction ID %q: %w", s, err)
	}
	return Parts{
		Letter: s[:1],
		Alias:  s[1:3],
		Date:   date,
		Suffix: s[10:],
	}, nil
}

// Suffix returns the random disambiguator of an ID, or "" if there is none.
func Suffix(s string) string {
	if len(s) < suffixLen+1 || s[len(s)-suffixLen-1] != '-' {
		return ""
	}
	return s[len(s)-suffixLen:]
}
