package router

import (
	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/config"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers"
	"github.com/bountyhub/bountyhub-backend/internal/http/middleware"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// Handlers собирает все хэндлеры для роутера.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Bounty       *handlers.BountyHandler
	Request      *handlers.RequestHandler
	Submission   *handlers.SubmissionHandler
	Wallet       *handlers.WalletHandler
	Dispute      *handlers.DisputeHandler
	Rating       *handlers.RatingHandler
	Report       *handlers.ReportHandler
	Message      *handlers.MessageHandler
	Notification *handlers.NotificationHandler
	Verification *handlers.VerificationHandler
	Account      *handlers.AccountHandler
	Health       *handlers.HealthHandler
	WS           *handlers.WSHandler
}

// SetupRouter настраивает все маршруты приложения.
func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	// Аутентификация с жёстким лимитом запросов.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
	}

	// Публичные маршруты.
	api.GET("/bounties", h.Bounty.List)
	api.GET("/bounties/:id", middleware.UUIDValidator("id"), h.Bounty.Get)
	api.GET("/bounties/:id/history", middleware.UUIDValidator("id"), h.Bounty.ListHistory)
	api.GET("/users/:id", middleware.UUIDValidator("id"), h.Profile.GetUserProfile)
	api.GET("/users/:id/ratings", middleware.UUIDValidator("id"), h.Rating.ListByUser)
	api.GET("/users/:id/ratings/summary", middleware.UUIDValidator("id"), h.Rating.GetSummary)
	api.GET("/ws", h.WS.Handle)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)
		protected.DELETE("/account", h.Account.DeleteMe)

		protected.POST("/payment-methods", h.Profile.AddPaymentMethod)
		protected.GET("/payment-methods", h.Profile.ListPaymentMethods)
		protected.DELETE("/payment-methods/:id", middleware.UUIDValidator("id"), h.Profile.DeletePaymentMethod)

		protected.POST("/bounties", h.Bounty.Create)
		protected.GET("/bounties/my", h.Bounty.ListMine)
		protected.GET("/bounties/assigned", h.Bounty.ListAssigned)
		protected.PUT("/bounties/:id", middleware.UUIDValidator("id"), h.Bounty.Update)
		protected.POST("/bounties/:id/cancel", middleware.UUIDValidator("id"), h.Bounty.Cancel)
		protected.POST("/bounties/:id/archive", middleware.UUIDValidator("id"), h.Bounty.Archive)
		protected.POST("/bounties/:id/approve", middleware.UUIDValidator("id"), h.Bounty.ApproveCompletion)
		protected.POST("/bounties/:id/request-revision", middleware.UUIDValidator("id"), h.Bounty.RequestRevision)

		protected.POST("/bounties/:id/requests", middleware.UUIDValidator("id"), h.Request.Apply)
		protected.GET("/bounties/:id/requests", middleware.UUIDValidator("id"), h.Request.ListByBounty)
		protected.POST("/bounties/:id/requests/:requestId/accept", middleware.UUIDValidator("id"), middleware.UUIDValidator("requestId"), h.Bounty.AcceptRequest)
		protected.POST("/bounties/:id/requests/:requestId/reject", middleware.UUIDValidator("id"), middleware.UUIDValidator("requestId"), h.Request.Reject)
		protected.GET("/requests/my", h.Request.ListMine)
		protected.DELETE("/requests/:id", middleware.UUIDValidator("id"), h.Request.Withdraw)

		protected.POST("/bounties/:id/submissions", middleware.UUIDValidator("id"), h.Submission.Submit)
		protected.GET("/bounties/:id/submissions", middleware.UUIDValidator("id"), h.Submission.ListByBounty)
		protected.GET("/submissions/:id", middleware.UUIDValidator("id"), h.Submission.Get)

		protected.POST("/bounties/:id/ratings", middleware.UUIDValidator("id"), h.Rating.Rate)

		protected.POST("/bounties/:id/dispute", middleware.UUIDValidator("id"), h.Dispute.Open)

		protected.POST("/bounties/:id/chat", middleware.UUIDValidator("id"), h.Message.StartConversation)
		protected.GET("/conversations/my", h.Message.ListConversations)
		protected.GET("/conversations/:conversationId/messages", middleware.UUIDValidator("conversationId"), h.Message.ListMessages)
		protected.POST("/conversations/:conversationId/messages", middleware.UUIDValidator("conversationId"), h.Message.Send)

		protected.GET("/wallet/balance", h.Wallet.GetBalance)
		protected.POST("/wallet/deposit", h.Wallet.Deposit)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)
		protected.GET("/wallet/escrow/:bountyId", middleware.UUIDValidator("bountyId"), h.Wallet.GetEscrow)
		protected.POST("/withdrawals", h.Wallet.Withdraw)
		protected.GET("/withdrawals", h.Wallet.ListWithdrawals)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)

		protected.POST("/reports", h.Report.Create)

		protected.POST("/verification/send", h.Verification.SendCode)
		protected.POST("/verification/confirm", h.Verification.Confirm)
		protected.GET("/verification/status", h.Verification.Status)
	}

	// Администрирование: арбитраж споров, модерация жалоб, удаление аккаунтов.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		admin.GET("/disputes", h.Dispute.ListOpen)
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), h.Dispute.Resolve)
		admin.GET("/reports", h.Report.ListPending)
		admin.POST("/reports/:id/review", middleware.UUIDValidator("id"), h.Report.Review)
		admin.DELETE("/users/:id", middleware.UUIDValidator("id"), h.Account.DeleteUser)
	}

	return r
}
