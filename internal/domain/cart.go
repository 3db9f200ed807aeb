package domain

import "time"

// Limits on cart contents. MaxUnitPrice * MaxItemQuantity * MaxCartLines fits in int64,
// so Subtotal and Total cannot overflow.
const (
	MaxItemQuantity = 999
	MaxUnitPrice    = 1_000_000_000_000 // minor currency units
	MaxCartLines    = 500
	MaxIDLength     = 128
	MaxNameLength   = 200
)

// Cart is a user's shopping cart. Each user owns at most one.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is a single product line in a cart.
type CartItem struct {
	ProductID string
	Name      string
	UnitPrice int64 // minor currency units
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal returns UnitPrice * Quantity.
func (i CartItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Total returns the sum of all line subtotals.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// TotalQuantity returns the number of units across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// FindItem returns the line for productID, if present.
func (c *Cart) FindItem(productID string) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// NewEmptyCart returns an unsaved cart for userID with no lines.
func NewEmptyCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}
