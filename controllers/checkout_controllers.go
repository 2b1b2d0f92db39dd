package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/middlewares"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{Checkout: checkout}
}

// GetPayment -> order summary and the buyer's contact details for the payment form.
// No open order is a server error.
func (cc *CheckoutController) GetPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	order, user, err := cc.Checkout.PaymentSummary(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment", gin.H{
		"order":   newOrderView(order),
		"profile": newProfileView(user),
	})
}

// PostPayment charges the submitted token and fulfils the open order.
func (cc *CheckoutController) PostPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	token := strings.TrimSpace(c.PostForm(middlewares.PaymentTokenField))
	result, err := cc.Checkout.Checkout(c.Request.Context(), userID, token)
	if err != nil {
		if result != nil && errors.Is(err, services.ErrBadHeader) {
			// Order is already paid; only the staff email was refused.
			c.String(http.StatusOK, "Invalid header found!")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/thanks")
}

func (cc *CheckoutController) Thanks(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Thanks for your order! Staff has been notified.", nil)
}
