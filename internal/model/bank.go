package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankMovement is an inflow row parsed from a bank statement export.
type BankMovement struct {
	BankID      string
	Amount      decimal.Decimal // absolute value, always positive
	Description string
	Date        string    // raw date cell
	Timestamp   time.Time // zero if the date could not be parsed
}
