package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/coffee-order/utils"
	"golang.org/x/time/rate"
)

// PaymentTokenField is the form field carrying the gateway's single-use token.
const PaymentTokenField = "payment_token"

// PaymentSecurityHeaders adds security headers for payment endpoints
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Cache-Control", "no-store")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// PaymentRateLimiter caps charge attempts across the whole service.
func PaymentRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			utils.AbortWithError(c, http.StatusTooManyRequests,
				errors.New("please wait before making another payment request"))
			return
		}
		c.Next()
	}
}

// ValidatePaymentToken rejects a checkout without a usable token before the
// gateway is called.
func ValidatePaymentToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.PostForm(PaymentTokenField))
		if token == "" {
			utils.AbortWithError(c, http.StatusBadRequest, errors.New("payment_token is required"))
			return
		}
		if len(token) > 255 || strings.ContainsAny(token, " \r\n\t") {
			utils.AbortWithError(c, http.StatusBadRequest, errors.New("payment_token is malformed"))
			return
		}
		c.Next()
	}
}

// LogPaymentRequest logs payment request details
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"user_id":  c.GetUint("user_id"),
		}).Info("Payment request")
	}
}
