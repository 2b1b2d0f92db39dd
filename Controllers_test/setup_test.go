package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/coffee-order/feed"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/router"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type stubGateway struct {
	mu       sync.Mutex
	requests []services.ChargeRequest
	err      error
}

func (g *stubGateway) Charge(_ context.Context, req services.ChargeRequest) (*services.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &services.Charge{ID: fmt.Sprintf("ch_%d", len(g.requests)), Paid: true}, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *stubMailer) SendToStaff(subject, replyTo, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, body)
	return nil
}

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	gateway *stubGateway
	mailer  *stubMailer
	hub     *feed.Hub
}

func setupTestDB(t *testing.T) *gorm.DB {
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

	for _, item := range []models.Item{
		{Name: "Latte", Slug: "latte", Price: decimal.RequireFromString("5.00")},
		{Name: "Mocha", Slug: "mocha", Price: decimal.RequireFromString("3.00")},
	} {
		item := item
		require.NoError(t, db.Create(&item).Error)
	}
	return db
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		db:      setupTestDB(t),
		gateway: &stubGateway{},
		mailer:  &stubMailer{},
		hub:     feed.NewHub(),
	}
	app.router = router.SetupRouter(app.db, router.Options{
		Gateway:    app.gateway,
		Mailer:     app.mailer,
		Hub:        app.hub,
		Currency:   "cad",
		CORSOrigin: "http://localhost:5500",
		ShopName:   "Coffee Order",
	})
	return app
}

func (app *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin registers a customer through the API and returns its token.
func (app *testApp) signupAndLogin(t *testing.T, email string) string {
	t.Helper()
	w := app.do(http.MethodPost, "/signup", "", map[string]string{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"room_number": "12B",
		"tel":         "555-0101",
		"email":       email,
		"password":    "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// staffToken creates a staff account directly; staff never sign up.
func (app *testApp) staffToken(t *testing.T) string {
	t.Helper()
	staff := models.User{FirstName: "Sam", LastName: "Barista", Email: "staff@example.com", Password: "x", Role: models.RoleStaff}
	require.NoError(t, app.db.Create(&staff).Error)
	token, err := utils.GenerateToken(staff.ID, staff.Role)
	require.NoError(t, err)
	return token
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var resp struct {
		Status bool            `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, into))
}
