package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/utils"
)

func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		utils.InfoLogger.Debugf("Generating receipt for order ID: %s", orderID)

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Infof("Receipt generated for order ID: %s", orderID)
		} else {
			utils.ErrorLogger.Errorf("Failed to generate receipt for order ID: %s (status %d)", orderID, c.Writer.Status())
		}
	}
}
