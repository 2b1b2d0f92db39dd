package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/coffee-order/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		RoomNumber: "12B",
		Tel:        "555-0101",
		Email:      email,
		Password:   "hashed",
		Role:       models.RoleCustomer,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createItem(t *testing.T, db *gorm.DB, name, slug, price string) models.Item {
	t.Helper()
	item := models.Item{
		Name:  name,
		Slug:  slug,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []ChargeRequest
	err      error
	next     int
}

func (g *fakeGateway) Charge(_ context.Context, req ChargeRequest) (*Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	g.next++
	return &Charge{
		ID:       fmt.Sprintf("ch_test_%d", g.next),
		Amount:   ToMinorUnits(req.Amount),
		Currency: req.Currency,
		Status:   "succeeded",
		Paid:     true,
	}, nil
}

type sentMail struct {
	subject, replyTo, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendToStaff(subject, replyTo, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject: subject, replyTo: replyTo, body: body})
	return nil
}
