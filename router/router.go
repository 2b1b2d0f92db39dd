package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/controllers"
	"github.com/yeremiapane/coffee-order/feed"
	"github.com/yeremiapane/coffee-order/middlewares"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/services"
	"gorm.io/gorm"
)

// Options carries the outbound dependencies and settings the routes need.
type Options struct {
	Gateway    services.PaymentGateway
	Mailer     services.StaffMailer
	Hub        *feed.Hub
	Currency   string
	CORSOrigin string
	ShopName   string
	// RequestsPerSecond is the per-IP budget of the global limiter; 0 disables it.
	RequestsPerSecond int
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middleware harus dipasang sebelum route didaftarkan.
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	if opts.RequestsPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RequestsPerSecond, 1).RateLimit())
	}

	hub := opts.Hub
	if hub == nil {
		hub = feed.NewHub()
	}

	catalogSvc := services.NewCatalogService(db)
	cartSvc := services.NewCartService(db, catalogSvc)
	checkoutSvc := services.NewCheckoutService(db, opts.Gateway, opts.Mailer, opts.Currency)
	checkoutSvc.OnFulfilled(func(order models.Order, user models.User) {
		hub.BroadcastOrderFulfilled(order, user)
	})
	checkoutSvc.OnStaffAlert(hub.BroadcastStaffNotification)
	receiptSvc := services.NewReceiptService(db, opts.ShopName)

	userCtrl := controllers.NewUserController(db)
	catalogCtrl := controllers.NewCatalogController(catalogSvc)
	cartCtrl := controllers.NewCartController(cartSvc)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc)
	receiptCtrl := controllers.NewReceiptController(receiptSvc)
	adminCtrl := controllers.NewAdminController(receiptSvc)
	feedCtrl := controllers.NewFeedController(hub, opts.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/signup
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/signup", userCtrl.Signup)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/", catalogCtrl.ListItems)
	r.GET("/items", catalogCtrl.ListItems)
	r.GET("/items/:slug", catalogCtrl.GetItem)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)
		auth.PATCH("/profile", userCtrl.UpdateProfile)

		auth.GET("/add-item/:slug", cartCtrl.AddItem)
		auth.GET("/remove-item/:slug", cartCtrl.RemoveItem)
		auth.GET("/remove-single-item/:slug", cartCtrl.RemoveSingleItem)
		auth.GET("/order", cartCtrl.GetOrder)

		auth.GET("/thanks", checkoutCtrl.Thanks)
		auth.GET("/orders/:order_id/receipt", middlewares.ReceiptLoggerMiddleware(), receiptCtrl.GetReceipt)
	}

	payment := auth.Group("/payment")
	payment.Use(middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payment.GET("", checkoutCtrl.GetPayment)
		payment.POST("",
			middlewares.PaymentRateLimiter(),
			middlewares.ValidatePaymentToken(),
			checkoutCtrl.PostPayment,
		)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RoleCheck(models.RoleStaff))
	{
		admin.POST("/items", catalogCtrl.CreateItem)
		admin.PATCH("/items/:slug", catalogCtrl.UpdateItem)
		admin.GET("/orders", adminCtrl.GetRecentOrders)
	}

	r.GET("/ws/staff",
		middlewares.WebSocketAuthMiddleware(),
		middlewares.RoleCheck(models.RoleStaff),
		feedCtrl.StaffFeedHandler,
	)

	return r
}
