package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderListener is told about every order that has just been paid.
type OrderListener func(order models.Order, user models.User)

// AlertListener receives plain-text alerts meant for staff.
type AlertListener func(message string)

// CheckoutService turns the open order into a paid one.
//
// The charge happens first and nothing is written if it fails. Once the
// charge succeeds the payment and order rows are committed, and only then is
// staff emailed; a mail failure never rolls the charge back.
type CheckoutService struct {
	db        *gorm.DB
	gateway   PaymentGateway
	mailer    StaffMailer
	currency  string
	listeners []OrderListener
	alerts    []AlertListener
}

func NewCheckoutService(db *gorm.DB, gateway PaymentGateway, mailer StaffMailer, currency string) *CheckoutService {
	return &CheckoutService{
		db:       db,
		gateway:  gateway,
		mailer:   mailer,
		currency: currency,
	}
}

// OnFulfilled registers a callback run after the order is committed as paid
// and before staff is emailed.
func (s *CheckoutService) OnFulfilled(fn OrderListener) {
	s.listeners = append(s.listeners, fn)
}

// OnStaffAlert registers a callback told when a paid order could not be
// emailed to staff.
func (s *CheckoutService) OnStaffAlert(fn AlertListener) {
	s.alerts = append(s.alerts, fn)
}

// chargeKey derives the gateway idempotency key from what is charged, so a
// resubmission of the same charge dedupes and any change gets a new key.
func chargeKey(orderID uint, total decimal.Decimal, description, token string) string {
	name := fmt.Sprintf("%d|%s|%s|%s", orderID, total.StringFixed(2), description, token)
	return fmt.Sprintf("order-%d-%s", orderID, uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)))
}

// CheckoutResult describes a committed checkout.
type CheckoutResult struct {
	Order       models.Order
	Payment     models.Payment
	User        models.User
	Total       decimal.Decimal
	Description string
}

// PaymentSummary loads what the payment page shows: the open order and the
// buyer's profile. No open order is an ErrNoOpenOrder error.
func (s *CheckoutService) PaymentSummary(ctx context.Context, userID uint) (models.Order, models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return models.Order{}, models.User{}, fmt.Errorf("load user %d: %w", userID, err)
	}

	order, found, err := loadOpenOrder(db, userID)
	if err != nil {
		return models.Order{}, models.User{}, err
	}
	if !found {
		return models.Order{}, models.User{}, fmt.Errorf("user %d: %w", userID, ErrNoOpenOrder)
	}
	return order, user, nil
}

// Checkout charges token for the open order, records the payment, marks the
// order and its lines as ordered and emails staff.
//
// The returned result is non-nil whenever the payment was committed, even if
// the staff email then failed; callers must check both values.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, token string) (*CheckoutResult, error) {
	order, user, err := s.PaymentSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("order %d: %w", order.ID, ErrEmptyOrder)
	}

	// Dihitung sebelum line ditandai ordered.
	total := order.Total()
	description := order.Description()

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:         total,
		Currency:       s.currency,
		Description:    description,
		Token:          token,
		IdempotencyKey: chargeKey(order.ID, total, description, token),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: charge order %d: %w", ErrGateway, order.ID, err)
	}

	payment := models.Payment{
		UserID:   userID,
		ChargeID: charge.ID,
		Amount:   total,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ?", order.ID).
			Updates(map[string]interface{}{"ordered": true, "open_key": nil}).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND ordered = ?", order.ID, false).
			Updates(map[string]interface{}{"ordered": true, "open_key": nil, "payment_id": payment.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d was checked out concurrently", order.ID)
		}
		return nil
	})
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id":  order.ID,
			"charge_id": charge.ID,
		}).Errorf("Charge succeeded but recording it failed: %v", err)
		return nil, fmt.Errorf("record payment for charge %s: %w", charge.ID, err)
	}

	for i := range order.Items {
		order.Items[i].Ordered = true
		order.Items[i].OpenKey = nil
	}
	order.Ordered = true
	order.OpenKey = nil
	order.PaymentID = &payment.ID
	order.Payment = &payment

	result := &CheckoutResult{
		Order:       order,
		Payment:     payment,
		User:        user,
		Total:       total,
		Description: description,
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"charge_id": charge.ID,
		"amount":    total.StringFixed(2),
	}).Info("Order fulfilled")

	for _, fn := range s.listeners {
		fn(order, user)
	}

	body := ComposeOrderNotice(user, description)
	if err := s.mailer.SendToStaff(orderNoticeSubject, user.Email, body); err != nil {
		if !errors.Is(err, ErrBadHeader) {
			utils.ErrorLogger.Errorf("Staff notification for order %d failed: %v", order.ID, err)
		}
		alert := fmt.Sprintf("Order #%d for %s (room %s) is paid but the email failed: %s",
			order.ID, user.FullName(), user.RoomNumber, description)
		for _, fn := range s.alerts {
			fn(alert)
		}
		return result, fmt.Errorf("notify staff about order %d: %w", order.ID, err)
	}

	return result, nil
}
