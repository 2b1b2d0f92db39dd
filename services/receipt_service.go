package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/utils"
	"gorm.io/gorm"
)

type ReceiptService struct {
	db       *gorm.DB
	shopName string
}

func NewReceiptService(db *gorm.DB, shopName string) *ReceiptService {
	return &ReceiptService{db: db, shopName: shopName}
}

// FindFulfilledOrder loads a paid order owned by userID with lines, items and
// payment. Open orders and other users' orders are ErrOrderNotFound.
func (s *ReceiptService) FindFulfilledOrder(ctx context.Context, userID, orderID uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_items.id ASC")
		}).
		Preload("Items.Item").
		Preload("Payment").
		Preload("User").
		Where("id = ? AND user_id = ? AND ordered = ?", orderID, userID, true).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// RecentFulfilledOrders lists the newest paid orders for the staff dashboard.
func (s *ReceiptService) RecentFulfilledOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_items.id ASC")
		}).
		Preload("Items.Item").
		Preload("Payment").
		Preload("User").
		Where("ordered = ?", true).
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// RenderReceipt writes an A4 PDF receipt for a fulfilled order to w.
func (s *ReceiptService) RenderReceipt(w io.Writer, order models.Order) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s receipt #%d", s.shopName, order.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, s.shopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Receipt #"+strconv.FormatUint(uint64(order.ID), 10), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(40, 6, "Customer", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, order.User.FullName(), "", 1, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Room", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, order.User.RoomNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Date", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, order.OrderedDate.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	if order.Payment != nil {
		pdf.CellFormat(40, 6, "Charge", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, order.Payment.ChargeID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range order.Items {
		pdf.CellFormat(90, 7, line.Item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrency(line.Item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrency(line.LineTotal()), "1", 1, "R", false, 0, "")
	}

	total := order.Total()
	if order.Payment != nil {
		total = order.Payment.Amount
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, utils.FormatCurrency(total), "1", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render receipt %d: %w", order.ID, err)
	}
	return pdf.Output(w)
}
