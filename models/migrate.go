package models

import "gorm.io/gorm"

// Migrate creates or updates every table the storefront uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Item{},
		&Payment{},
		&Order{},
		&OrderItem{},
	)
}
