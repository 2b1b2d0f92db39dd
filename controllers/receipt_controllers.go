package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type ReceiptController struct {
	Receipts *services.ReceiptService
}

func NewReceiptController(receipts *services.ReceiptService) *ReceiptController {
	return &ReceiptController{Receipts: receipts}
}

// GetReceipt -> PDF receipt for one of the caller's fulfilled orders
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order_id"))
		return
	}

	order, err := rc.Receipts.FindFulfilledOrder(c.Request.Context(), userID, uint(orderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := rc.Receipts.RenderReceipt(&buf, order); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%d.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
