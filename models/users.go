package models

import (
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FirstName  string `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName   string `gorm:"type:varchar(30);not null" json:"last_name"`
	RoomNumber string `gorm:"type:varchar(30)" json:"room_number"`
	Tel        string `gorm:"type:varchar(30)" json:"tel"`
	Email      string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string `gorm:"type:varchar(255);not null" json:"-"`
	Role       string `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name, skipping whichever is empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
