package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order groups a user's cart lines. A user has at most one open order
// (Ordered=false): OpenKey holds the user id while open and NULL afterwards,
// and carries a unique index.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Ordered     bool        `gorm:"not null;default:false" json:"ordered"`
	OrderedDate time.Time   `gorm:"not null" json:"ordered_date"`
	PaymentID   *uint       `gorm:"uniqueIndex" json:"payment_id,omitempty"`
	Payment     *Payment    `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	OpenKey     *uint       `gorm:"uniqueIndex" json:"-"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

// Total sums every line. Items and Items.Item must be loaded.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Description lists the lines as "name:qty", comma separated.
func (o Order) Description() string {
	parts := make([]string, 0, len(o.Items))
	for _, line := range o.Items {
		parts = append(parts, line.String())
	}
	return strings.Join(parts, ", ")
}

// HasItem reports whether one of the loaded lines is for itemID.
func (o Order) HasItem(itemID uint) bool {
	for _, line := range o.Items {
		if line.ItemID == itemID {
			return true
		}
	}
	return false
}
