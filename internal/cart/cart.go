// Package cart holds the client-local shopping cart. Unlike every other
// entity on screen, the cart never reaches the TechFix API: it lives in a
// small local sqlite database (the browser-storage analog), survives a
// restart, and is cleared when a purchase succeeds.
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"uniqueIndex"` // one cart per user
	Items     []Item `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index"`
	ProductID int64
	Name      string
	Price     float64 // unit price captured at add-time
	Quantity  int
	AddedAt   time.Time
}

// LineTotal is the item's price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the line totals of every item.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool { return c == nil || len(c.Items) == 0 }
