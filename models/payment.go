package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records a completed gateway charge. It is never updated.
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      User            `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ChargeID  string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"charge_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}
