package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/coffee-order/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService builds the user's open order one item at a time.
type CartService struct {
	db      *gorm.DB
	catalog *CatalogService
	now     func() time.Time
}

func NewCartService(db *gorm.DB, catalog *CatalogService) *CartService {
	return &CartService{
		db:      db,
		catalog: catalog,
		now:     time.Now,
	}
}

// findOpenOrder looks up the user's open order with its lines (items not loaded).
// found is false when the user has no open order.
func findOpenOrder(tx *gorm.DB, userID uint) (order models.Order, found bool, err error) {
	err = tx.Preload("Items").
		Where("user_id = ? AND ordered = ?", userID, false).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}

// findOpenLine looks up the user's not yet checked out line for itemID.
func findOpenLine(tx *gorm.DB, userID, itemID uint) (line models.OrderItem, found bool, err error) {
	err = tx.Where("user_id = ? AND item_id = ? AND ordered = ?", userID, itemID, false).
		Take(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.OrderItem{}, false, nil
	}
	if err != nil {
		return models.OrderItem{}, false, err
	}
	return line, true, nil
}

// findOrderLine looks up the line for itemID inside the given order.
func findOrderLine(tx *gorm.DB, orderID, itemID uint) (line models.OrderItem, found bool, err error) {
	err = tx.Where("order_id = ? AND item_id = ? AND ordered = ?", orderID, itemID, false).
		Take(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.OrderItem{}, false, nil
	}
	if err != nil {
		return models.OrderItem{}, false, err
	}
	return line, true, nil
}

func attachLine(tx *gorm.DB, line *models.OrderItem, orderID uint) error {
	if err := tx.Model(line).Update("order_id", orderID).Error; err != nil {
		return err
	}
	line.OrderID = &orderID
	return nil
}

// AddItem puts one unit of the item into the user's open order, creating the
// order and the line when they do not exist yet.
func (s *CartService) AddItem(ctx context.Context, userID uint, slug string) (*models.OrderItem, error) {
	item, err := s.catalog.GetItemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var line models.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, lineFound, err := findOpenLine(tx, userID, item.ID)
		if err != nil {
			return err
		}
		if lineFound {
			line = existing
		} else {
			line = models.OrderItem{
				UserID:   userID,
				ItemID:   item.ID,
				Quantity: 1,
				OpenKey:  models.OpenLineKey(userID, item.ID),
			}
			if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
				return err
			}
		}

		order, orderFound, err := findOpenOrder(tx, userID)
		if err != nil {
			return err
		}

		switch {
		case !orderFound:
			openKey := userID
			order = models.Order{
				UserID:      userID,
				OrderedDate: s.now(),
				OpenKey:     &openKey,
			}
			if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
				return err
			}
			return attachLine(tx, &line, order.ID)
		case order.HasItem(item.ID):
			if err := tx.Model(&line).Update("quantity", gorm.Expr("quantity + ?", 1)).Error; err != nil {
				return err
			}
			line.Quantity++
			return nil
		default:
			return attachLine(tx, &line, order.ID)
		}
	})
	if err != nil {
		return nil, err
	}

	line.Item = *item
	return &line, nil
}

// RemoveItem deletes the item's line from the open order whatever its
// quantity. removed is false when there was nothing to remove.
func (s *CartService) RemoveItem(ctx context.Context, userID uint, slug string) (removed bool, err error) {
	item, err := s.catalog.GetItemBySlug(ctx, slug)
	if err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, found, err := findOpenOrder(tx, userID)
		if err != nil || !found {
			return err
		}
		line, found, err := findOrderLine(tx, order.ID, item.ID)
		if err != nil || !found {
			return err
		}
		if err := tx.Delete(&line).Error; err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

// RemoveSingleItem takes one unit off the item's line, deleting the line when
// it held a single unit. removed is false when the item was not in the cart.
func (s *CartService) RemoveSingleItem(ctx context.Context, userID uint, slug string) (removed bool, err error) {
	item, err := s.catalog.GetItemBySlug(ctx, slug)
	if err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, found, err := findOpenOrder(tx, userID)
		if err != nil || !found {
			return err
		}
		line, found, err := findOrderLine(tx, order.ID, item.ID)
		if err != nil || !found {
			return err
		}

		if line.Quantity > 1 {
			err = tx.Model(&line).Update("quantity", gorm.Expr("quantity - ?", 1)).Error
		} else {
			err = tx.Delete(&line).Error
		}
		if err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

// GetOpenOrder loads the open order with lines and their items.
// found is false when the user has no open order.
func (s *CartService) GetOpenOrder(ctx context.Context, userID uint) (order models.Order, found bool, err error) {
	return loadOpenOrder(s.db.WithContext(ctx), userID)
}

func loadOpenOrder(db *gorm.DB, userID uint) (order models.Order, found bool, err error) {
	err = db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("order_items.id ASC")
	}).
		Preload("Items.Item").
		Where("user_id = ? AND ordered = ?", userID, false).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return order, true, nil
}
