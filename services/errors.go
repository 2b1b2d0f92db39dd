package services

import "errors"

var (
	ErrValidation      = errors.New("validation")
	ErrItemNotFound    = errors.New("item not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrNoOpenOrder     = errors.New("no open order")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrGateway         = errors.New("payment gateway error")
	ErrGatewayDeclined = errors.New("payment gateway rejected the charge")
	ErrBadHeader       = errors.New("invalid header found")
)
