package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/coffee-order/utils"
)

// GatewayConfig holds the payment gateway settings.
type GatewayConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
}

// PaymentGateway charges a single-use client token.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// ChargeRequest is what checkout asks the gateway to collect.
type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Description    string
	Token          string
	IdempotencyKey string
}

// Charge is the gateway's record of a successful charge.
type Charge struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Paid     bool   `json:"paid"`
}

type gatewayErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GatewayClient talks to a card gateway's charges endpoint
// (POST /v1/charges, form encoded, secret key as basic auth user).
type GatewayClient struct {
	config     *GatewayConfig
	httpClient *http.Client
}

func NewGatewayClient(config *GatewayConfig) *GatewayClient {
	return &GatewayClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (gc *GatewayClient) ValidateConfig() error {
	if gc.config.SecretKey == "" {
		return fmt.Errorf("GATEWAY_SECRET_KEY is not set")
	}
	if gc.config.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is not set")
	}
	if gc.config.Currency == "" {
		return fmt.Errorf("GATEWAY_CURRENCY is not set")
	}
	return nil
}

// ToMinorUnits converts a decimal amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Charge submits the charge. Non-2xx answers are wrapped in ErrGatewayDeclined.
func (gc *GatewayClient) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	currency := req.Currency
	if currency == "" {
		currency = gc.config.Currency
	}
	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(ToMinorUnits(req.Amount), 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("description", req.Description)
	form.Set("source", req.Token)

	endpoint := gc.config.BaseURL + "/v1/charges"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.SetBasicAuth(gc.config.SecretKey, "")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)

	utils.InfoLogger.WithFields(logrus.Fields{
		"amount":   form.Get("amount"),
		"currency": form.Get("currency"),
	}).Info("Submitting charge to payment gateway")

	resp, err := gc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr gatewayErrorResponse
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &gwErr) == nil && gwErr.Error.Message != "" {
			message = gwErr.Error.Message
		}
		return nil, fmt.Errorf("%w (status %d): %s", ErrGatewayDeclined, resp.StatusCode, message)
	}

	var charge Charge
	if err := json.Unmarshal(body, &charge); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if charge.ID == "" {
		return nil, fmt.Errorf("gateway response has no charge id")
	}

	utils.InfoLogger.Infof("Gateway charge %s created", charge.ID)
	return &charge, nil
}
