package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// LineKey identifies a cart entry. Two entries for the same product with a
// different size or color are distinct.
type LineKey struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// LineItem is a product selection in a cart. Quantity is always >= 1.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// Key returns the identity of the entry.
func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, Size: li.Size, Color: li.Color}
}

// LineTotal is the effective unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is the working state of one owner (a browser session or a user id).
// Every ledger operation returns a new Cart and leaves the receiver untouched,
// so a caller never observes a half-applied mutation.
type Cart struct {
	Owner string     `json:"owner"`
	Items []LineItem `json:"items"`
}

// NewCart returns an empty cart for owner.
func NewCart(owner string) Cart {
	return Cart{Owner: owner, Items: []LineItem{}}
}

func (c Cart) clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Owner: c.Owner, Items: items}
}

func (c Cart) indexOf(key LineKey) int {
	return slices.IndexFunc(c.Items, func(li LineItem) bool { return li.Key() == key })
}

// Find returns the entry for key.
func (c Cart) Find(key LineKey) (LineItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Add increments the matching entry by quantity or appends a new entry.
// Stock is not consulted.
func (c Cart) Add(product Product, quantity int, size, color string) (Cart, error) {
	if product.ID == "" {
		return c, NewValidationError("product id is required")
	}
	if quantity < 1 {
		return c, &ValidationError{
			Message: "invalid quantity",
			Fields:  map[string]string{"quantity": "must be a positive integer"},
		}
	}
	if err := product.acceptsVariant(size, color); err != nil {
		return c, err
	}

	next := c.clone()
	key := LineKey{ProductID: product.ID, Size: size, Color: color}
	if i := next.indexOf(key); i >= 0 {
		next.Items[i].Quantity += quantity
		return next, nil
	}
	next.Items = append(next.Items, LineItem{Product: product, Quantity: quantity, Size: size, Color: color})
	return next, nil
}

// SetQuantity replaces the quantity of the entry for key. A quantity of zero
// or less removes the entry. found is false, and the cart unchanged, when no
// entry matches.
func (c Cart) SetQuantity(key LineKey, quantity int) (next Cart, found bool) {
	i := c.indexOf(key)
	if i < 0 {
		return c, false
	}
	if quantity <= 0 {
		return c.Remove(key), true
	}
	next = c.clone()
	next.Items[i].Quantity = quantity
	return next, true
}

// Remove deletes the entry for key. Removing an absent entry is a no-op.
func (c Cart) Remove(key LineKey) Cart {
	next := c.clone()
	next.Items = slices.DeleteFunc(next.Items, func(li LineItem) bool { return li.Key() == key })
	return next
}

// Clear returns an empty cart for the same owner.
func (c Cart) Clear() Cart {
	return NewCart(c.Owner)
}

// Subtotal sums every entry's line total.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items {
		total = total.Add(li.LineTotal())
	}
	return total
}

// ItemCount is the sum of quantities, not the number of entries.
func (c Cart) ItemCount() int {
	var n int
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no entries.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
