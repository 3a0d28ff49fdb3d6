package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
	"github.com/cleared-dev/bote/internal/store"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors is every problem found in one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// MemberChecker tests whether a member ID is on the roster.
type MemberChecker interface {
	Exists(id int) bool
}

func validateType(t model.TransactionType) []ValidationError {
	if !t.Valid() {
		return []ValidationError{{Field: "type", Description: fmt.Sprintf("unknown transaction type %q", t)}}
	}
	return nil
}

func validateAmount(a decimal.Decimal) []ValidationError {
	if a.IsNegative() {
		return []ValidationError{{Field: "amount", Description: fmt.Sprintf("amount %s must not be negative", a)}}
	}
	if !a.Equal(a.Round(2)) {
		return []ValidationError{{Field: "amount", Description: fmt.Sprintf("amount %s has more than 2 decimal places", a)}}
	}
	return nil
}

func validateMember(id int, members MemberChecker) []ValidationError {
	if !members.Exists(id) {
		return []ValidationError{{Field: "member_id", Description: fmt.Sprintf("unknown member %d", id)}}
	}
	return nil
}

// ValidateAdd checks the parameters of a new transaction.
func ValidateAdd(p AddParams, members MemberChecker) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, validateType(p.Type)...)
	errs = append(errs, validateAmount(p.Amount)...)
	errs = append(errs, validateMember(p.MemberID, members)...)
	if p.IsGuest && p.Type != model.TypeConsumption {
		errs = append(errs, ValidationError{Field: "is_guest", Description: "only consumptions can be made for a guest"})
	}
	return errs
}

// ValidatePatch checks an admin edit. Only the fields present are checked.
func ValidatePatch(p store.TransactionPatch, members MemberChecker) ValidationErrors {
	var errs ValidationErrors
	if p.Type != nil {
		errs = append(errs, validateType(*p.Type)...)
	}
	if p.Amount != nil {
		errs = append(errs, validateAmount(*p.Amount)...)
	}
	if p.MemberID != nil {
		errs = append(errs, validateMember(*p.MemberID, members)...)
	}
	return errs
}
