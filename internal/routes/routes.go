package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carenow-backend/internal/config"
	"carenow-backend/internal/handlers"
	"carenow-backend/internal/metrics"
	"carenow-backend/internal/middleware"
	"carenow-backend/pkg/utils"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Catalog      *handlers.CatalogHandler
	Partner      *handlers.PartnerHandler
	BookingFlow  *handlers.BookingFlowHandler
	Booking      *handlers.BookingHandler
	Payment      *handlers.PaymentHandler
	Review       *handlers.ReviewHandler
	Notification *handlers.NotificationHandler
	Admin        *handlers.AdminHandler
	Finance      *handlers.FinanceHandler
}

func SetupRoutes(r *gin.Engine, cfg config.Config, h Handlers, m *metrics.Metrics, log zerolog.Logger) {
	handlers.RegisterValidators()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(m.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, http.StatusOK, true, "Server OK!", nil)
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Grouping API dengan Versi (v1)
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimit))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/firebase", h.Auth.FirebaseLogin)
			auth.POST("/password-reset", h.Auth.PasswordReset)
		}

		// Public: katalog dan pencarian mitra
		api.GET("/services", h.Catalog.ListServices)
		api.GET("/services/:id", h.Catalog.GetService)
		api.GET("/partners/search", h.Partner.Search)
		api.GET("/partners/:id/reviews", h.Partner.Reviews)
		api.POST("/payment/notification", h.Payment.Notification)

		// PROTECTED ROUTES (Harus Login / Punya Token)
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)
			protected.GET("/profile", h.Auth.GetProfile)
			protected.PUT("/profile", h.Auth.UpdateProfile)
			protected.DELETE("/profile", h.Auth.DeleteAccount)

			flow := protected.Group("/booking-flow")
			{
				flow.POST("", h.BookingFlow.Create)
				flow.GET("/:id", h.BookingFlow.Get)
				flow.DELETE("/:id", h.BookingFlow.Delete)
				flow.POST("/:id/events", h.BookingFlow.Dispatch)
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", h.Booking.Create)
				bookings.GET("", h.Booking.List)
				bookings.GET("/:id", h.Booking.Get)
				bookings.POST("/:id/cancel", h.Booking.Cancel)
				bookings.GET("/:id/track", h.Booking.Track)
			}

			protected.POST("/reviews", h.Review.Create)
			protected.PUT("/reviews/:id", h.Review.Update)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.POST("/token", h.Notification.RegisterToken)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/:id/read", h.Notification.MarkRead)
				notifications.GET("/preferences", h.Notification.GetPreferences)
				notifications.PUT("/preferences", h.Notification.UpdatePreferences)
				notifications.POST("/topics/:topic", h.Notification.SubscribeTopic)
				notifications.DELETE("/topics/:topic", h.Notification.UnsubscribeTopic)
			}

			// Group Khusus Mitra
			partner := protected.Group("/partner")
			partner.Use(middleware.PartnerOnly())
			{
				partner.GET("/profile", h.Partner.GetProfile)
				partner.PUT("/profile", h.Partner.UpdateProfile)
				partner.PATCH("/status", h.Partner.UpdateStatus)
				partner.GET("/bookings", h.Partner.Bookings)
				partner.POST("/bookings/:id/accept", h.Partner.Accept)
				partner.POST("/bookings/:id/reject", h.Partner.Reject)
				partner.POST("/bookings/:id/start", h.Partner.Start)
				partner.POST("/bookings/:id/complete", h.Partner.Complete)
				partner.POST("/bookings/:id/tracking", h.Partner.Tracking)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/dashboard", h.Admin.Dashboard)
				admin.GET("/bookings", h.Admin.Bookings)
				admin.POST("/bookings/:id/cancel", h.Admin.CancelBooking)
				admin.GET("/services", h.Admin.Services)
				admin.POST("/services", h.Admin.CreateService)
				admin.PUT("/services/:id", h.Admin.UpdateService)
				admin.GET("/partners/pending", h.Admin.PendingPartners)
				admin.POST("/partners/:id/verify", h.Admin.VerifyPartner)
				admin.POST("/notifications/broadcast", h.Admin.Broadcast)
			}

			finance := protected.Group("/finance")
			finance.Use(middleware.FinanceOnly())
			{
				finance.GET("/payments", h.Finance.Payments)
			}
		}
	}
}
