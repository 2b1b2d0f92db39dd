package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type AdminController struct {
	Receipts *services.ReceiptService
}

func NewAdminController(receipts *services.ReceiptService) *AdminController {
	return &AdminController{Receipts: receipts}
}

type staffOrderView struct {
	OrderView
	Customer ProfileView `json:"customer"`
	ChargeID string      `json:"charge_id,omitempty"`
}

// GetRecentOrders lists the newest paid orders, ?limit= up to 100.
func (ac *AdminController) GetRecentOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, err := ac.Receipts.RecentFulfilledOrders(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]staffOrderView, 0, len(orders))
	for _, order := range orders {
		view := staffOrderView{
			OrderView: newOrderView(order),
			Customer:  newProfileView(order.User),
		}
		if order.Payment != nil {
			view.ChargeID = order.Payment.ChargeID
		}
		views = append(views, view)
	}

	utils.RespondJSON(c, http.StatusOK, "Recent orders", views)
}
