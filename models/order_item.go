package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one cart line: an item and its quantity for a single user.
//
// OpenKey is "<user>:<item>" while the line is still in the cart and NULL once
// checked out, so the unique index allows only one open line per user and item.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID    uint      `gorm:"not null" json:"item_id"`
	Item      Item      `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Ordered   bool      `gorm:"not null;default:false" json:"ordered"`
	OpenKey   *string   `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// OpenLineKey builds the OpenKey value for an in-cart line.
func OpenLineKey(userID, itemID uint) *string {
	key := fmt.Sprintf("%d:%d", userID, itemID)
	return &key
}

// LineTotal is quantity x unit price. Item must be loaded.
func (oi OrderItem) LineTotal() decimal.Decimal {
	return oi.Item.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

func (oi OrderItem) String() string {
	return fmt.Sprintf("%s:%d", oi.Item.Name, oi.Quantity)
}
