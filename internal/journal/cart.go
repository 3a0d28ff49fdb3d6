package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bote/internal/model"
)

// CartItem is one product line in a pending consumption.
type CartItem struct {
	Product  string
	Price    decimal.Decimal // unit price
	Quantity int
	Guest    bool // consumed on behalf of a guest
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart collects consumptions before they are charged. It is plain state
// owned by the caller.
type Cart struct {
	Items []CartItem
}

// Add appends an item, merging it with an identical product line.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		it := &c.Items[i]
		if it.Product == item.Product && it.Guest == item.Guest && it.Price.Equal(item.Price) {
			it.Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Total is the sum of every subtotal.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Checkout charges the cart to memberID: one consumption for the member's
// own items and one for guest items. Items charged successfully leave the
// cart; on error the rest stay for a retry.
func (s *Service) Checkout(ctx context.Context, memberID int, cart *Cart) ([]model.Transaction, error) {
	var created []model.Transaction
	for _, guest := range []bool{false, true} {
		var group []CartItem
		for _, it := range cart.Items {
			if it.Guest == guest && it.Quantity > 0 {
				group = append(group, it)
			}
		}
		if len(group) == 0 {
			continue
		}

		sub := Cart{Items: group}
		tx, err := s.Add(ctx, AddParams{
			Type:        model.TypeConsumption,
			Amount:      sub.Total(),
			MemberID:    memberID,
			Description: describe(group),
			IsGuest:     guest,
		})
		if err != nil {
			return created, fmt.Errorf("checkout: %w", err)
		}
		created = append(created, tx)
		cart.remove(guest)
	}
	return created, nil
}

func (c *Cart) remove(guest bool) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Guest != guest {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func describe(items []CartItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%dx %s", it.Quantity, it.Product)
	}
	return strings.Join(parts, ", ")
}
