package routes

import (
	"net/http"

	"rasoi/auth"
	"rasoi/bids"
	"rasoi/middleware"
	"rasoi/notify"
	"rasoi/orders"
	"rasoi/pay"
	"rasoi/ratelim"
	"rasoi/subscription"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/requestpic/*filepath", http.Dir("static/requestpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.Refresh))
	router.POST("/api/auth/otp/request", rl.Limit(auth.RequestOTP))
	router.POST("/api/auth/otp/verify", rl.Limit(auth.VerifyOTP))
}

func AddRequestRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/custom-requests", rl.Limit(middleware.Authenticate(bids.CreateRequest)))
	router.GET("/api/custom-requests", middleware.Authenticate(bids.GetMyRequests))

	// seller-facing feed; kept off /api/custom-requests/:id to avoid a
	// wildcard conflict in the router
	router.GET("/api/seller/active-requests",
		middleware.Authenticate(middleware.RequireRole("seller", bids.GetActiveRequests)))

	router.GET("/api/custom-requests/:id", middleware.Authenticate(bids.GetRequest))
	router.PUT("/api/custom-requests/:id/cancel", middleware.Authenticate(bids.CancelRequest))
	router.POST("/api/custom-requests/:id/photo", rl.Limit(middleware.Authenticate(bids.UploadRequestPhoto)))
	router.POST("/api/custom-requests/:id/addons", middleware.Authenticate(bids.AddAddon))
	router.DELETE("/api/custom-requests/:id/addons/:addon", middleware.Authenticate(bids.RemoveAddon))
}

func AddBidRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/bids",
		rl.Limit(middleware.Authenticate(middleware.RequireRole("seller", bids.CreateBid))))
	router.GET("/api/bids",
		middleware.Authenticate(middleware.RequireRole("seller", bids.GetMyBids)))
	router.PUT("/api/bids/:id/accept", middleware.Authenticate(bids.AcceptBid))
	router.PUT("/api/bids/:id/reject", middleware.Authenticate(bids.RejectBid))
	router.PUT("/api/bids/:id/withdraw",
		middleware.Authenticate(middleware.RequireRole("seller", bids.WithdrawBid)))
}

func AddSubscriptionRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/subscriptions",
		rl.Limit(middleware.Authenticate(pay.Idempotent(subscription.CreateSubscription))))
	router.POST("/api/subscriptions/payment/confirm",
		middleware.Authenticate(pay.Idempotent(subscription.ConfirmPayment)))
	router.GET("/api/subscriptions", middleware.Authenticate(subscription.GetMySubscriptions))
	router.GET("/api/subscriptions/:id/schedule", middleware.Authenticate(subscription.GetDeliverySchedule))
	router.PUT("/api/subscriptions/:id/skip", middleware.Authenticate(subscription.SkipMeal))
	router.PUT("/api/subscriptions/:id/resume", middleware.Authenticate(subscription.ResumeMeal))
	router.PUT("/api/subscriptions/:id/cancel", middleware.Authenticate(subscription.CancelSubscription))
}

func AddOrderRoutes(router *httprouter.Router) {
	router.GET("/api/orders", middleware.Authenticate(orders.GetMyOrders))
	router.GET("/api/seller/orders",
		middleware.Authenticate(middleware.RequireRole("seller", orders.GetSellerOrders)))
	router.GET("/api/orders/:id", middleware.Authenticate(orders.GetOrder))
	router.GET("/api/orders/:id/pass", middleware.Authenticate(orders.DeliveryPass))
	router.PUT("/api/orders/:id/deliver",
		middleware.Authenticate(middleware.RequireRole("seller", orders.MarkDelivered)))
}

func AddWalletRoutes(router *httprouter.Router) {
	router.GET("/api/wallet/balance", middleware.Authenticate(pay.GetBalance))
	router.GET("/api/wallet/transactions", middleware.Authenticate(pay.GetTransactions))
}

func AddNotificationRoutes(router *httprouter.Router, hub *notify.Hub) {
	router.GET("/api/notifications", middleware.Authenticate(notify.GetNotifications))
	router.PUT("/api/notifications/:id/read", middleware.Authenticate(notify.MarkNotificationRead))
	router.POST("/api/notifications/read-all", middleware.Authenticate(notify.MarkAllNotificationsRead))
	router.GET("/ws/notifications", notify.WebSocketHandler(hub))
}
