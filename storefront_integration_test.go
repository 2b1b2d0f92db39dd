package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/router"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingMailer struct {
	mu     sync.Mutex
	bodies []string
}

func (m *recordingMailer) SendToStaff(subject, replyTo, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	return nil
}

// TestEndToEndCheckout runs the whole customer flow:
// 1. signup + login
// 2. add Latte twice and Mocha once
// 3. pay through the HTTP gateway client against a fake charges endpoint
// 4. check payment, order state and the staff email
func TestEndToEndCheckout(t *testing.T) {
	var charged url.Values
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		charged = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_e2e","amount":1300,"currency":"cad","status":"succeeded","paid":true}`))
	}))
	defer gatewaySrv.Close()

	db := setupTestDB(t)
	mailer := &recordingMailer{}
	r := router.SetupRouter(db, router.Options{
		Gateway: services.NewGatewayClient(&services.GatewayConfig{
			SecretKey: "sk_test",
			BaseURL:   gatewaySrv.URL,
			Currency:  "cad",
		}),
		Mailer:   mailer,
		Currency: "cad",
		ShopName: "Coffee Order",
	})

	token := signupAndLogin(t, r)

	for _, slug := range []string{"latte", "latte", "mocha"} {
		w := request(r, http.MethodGet, "/add-item/"+slug, token, nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
	}

	form := url.Values{"payment_token": {"tok_visa"}}
	w := request(r, http.MethodPost, "/payment", token, form)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/thanks", w.Header().Get("Location"))

	require.NotNil(t, charged)
	assert.Equal(t, "1300", charged.Get("amount"))
	assert.Equal(t, "cad", charged.Get("currency"))
	assert.Equal(t, "tok_visa", charged.Get("source"))
	assert.Contains(t, charged.Get("description"), "Latte:2")
	assert.Contains(t, charged.Get("description"), "Mocha:1")

	var payment models.Payment
	require.NoError(t, db.Take(&payment).Error)
	assert.Equal(t, "ch_e2e", payment.ChargeID)
	assert.True(t, decimal.NewFromInt(13).Equal(payment.Amount))

	var order models.Order
	require.NoError(t, db.Preload("Items").Take(&order).Error)
	assert.True(t, order.Ordered)
	for _, line := range order.Items {
		assert.True(t, line.Ordered)
	}

	require.Len(t, mailer.bodies, 1)
	assert.Contains(t, mailer.bodies[0], "■ Room Number\n12B")
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:e2e?mode=memory&cache=shared"), &gorm.Config{
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

func signupAndLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := request(r, http.MethodPost, "/signup", "", map[string]string{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"room_number": "12B",
		"tel":         "555-0101",
		"email":       "ada@example.com",
		"password":    "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(r, http.MethodPost, "/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func request(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)
	return w
}
