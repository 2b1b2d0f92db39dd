package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type CartController struct {
	Cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{Cart: cart}
}

// AddItem -> one more unit of :slug, then back to the order page
func (cc *CartController) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	line, err := cc.Cart.AddItem(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id":  userID,
		"item":     line.Item.Slug,
		"quantity": line.Quantity,
	}).Info("Item added to cart")

	c.Redirect(http.StatusSeeOther, "/order")
}

// RemoveItem drops the whole line. Nothing to remove sends the user back to
// the item page.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	slug := c.Param("slug")
	removed, err := cc.Cart.RemoveItem(c.Request.Context(), userID, slug)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	cc.redirectAfterRemove(c, slug, removed)
}

func (cc *CartController) RemoveSingleItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	slug := c.Param("slug")
	removed, err := cc.Cart.RemoveSingleItem(c.Request.Context(), userID, slug)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	cc.redirectAfterRemove(c, slug, removed)
}

func (cc *CartController) redirectAfterRemove(c *gin.Context, slug string, removed bool) {
	if removed {
		c.Redirect(http.StatusSeeOther, "/order")
		return
	}
	c.Redirect(http.StatusSeeOther, "/items/"+slug)
}

// GetOrder -> the open order, or an empty state when there is none
func (cc *CartController) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	order, found, err := cc.Cart.GetOpenOrder(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !found {
		utils.RespondJSON(c, http.StatusOK, "You do not have an active order", emptyOrderView())
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order summary", newOrderView(order))
}
