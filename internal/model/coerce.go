package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NoMember is the member ID given to records whose member field is missing
// or not numeric. It never equals a real member ID.
const NoMember = -1

// CoerceAmount converts a loosely typed stored amount into a decimal.
// Missing or non-numeric values become zero.
func CoerceAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		return CoerceAmount(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// CoerceMemberID converts a loosely typed stored member reference into an
// int. Numeric strings and whole numbers are accepted; anything else
// yields NoMember.
func CoerceMemberID(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		if math.IsNaN(x) || x != math.Trunc(x) {
			return NoMember
		}
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return NoMember
		}
		return n
	}
	return NoMember
}
