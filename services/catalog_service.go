package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/coffee-order/models"
	"gorm.io/gorm"
)

// CatalogService reads and maintains the list of purchasable items.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListItems returns every item, oldest first.
func (s *CatalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemBySlug fails with ErrItemNotFound when no item has that slug.
func (s *CatalogService) GetItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, slug)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemPatch carries the fields staff may change; nil means unchanged.
type ItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
}

func validateItem(item *models.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Slug = strings.TrimSpace(item.Slug)
	if item.Name == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if item.Slug == "" {
		return fmt.Errorf("slug is required: %w", ErrValidation)
	}
	if strings.ContainsAny(item.Slug, " /?#") {
		return fmt.Errorf("slug %q must be URL safe: %w", item.Slug, ErrValidation)
	}
	if !item.Price.IsPositive() {
		return fmt.Errorf("price must be more than zero: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *CatalogService) UpdateItem(ctx context.Context, slug string, patch ItemPatch) (*models.Item, error) {
	item, err := s.GetItemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
