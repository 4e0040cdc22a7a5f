package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/config"
	"github.com/careplus/clinic-backend/internal/transport/middleware"
)

// InitRoutes wires the HTTP surface. Everything under /api/v1 requires a
// client token; the admin sub-surface additionally requires the admin
// scope. Booking writes sit behind the per-IP rate limiter.
func InitRoutes(
	cfg *config.Config,
	bookingHandler *BookingHandler,
	availabilityHandler *AvailabilityHandler,
	redeemHandler *RedeemHandler,
	userHandler *UserHandler,
) *gin.Engine {

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.Server.Timeout))

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Server.AppVersion,
		})
	})

	api := router.Group("/api/v1")
	api.POST("/users/register", userHandler.Register)

	authed := api.Group("")
	authed.Use(middleware.RequireClient(cfg.Auth.JWTSecret, cfg.Auth.AdminScope))
	{
		booking := authed.Group("/booking")
		booking.Use(middleware.RateLimit(limiter))
		{
			doctor := booking.Group("/doctor")
			{
				doctor.POST("", bookingHandler.BookDoctor)
				doctor.GET("", bookingHandler.MyDoctorBookings)
				doctor.POST("/:id/cancel", bookingHandler.CancelDoctor)
				doctor.POST("/:id/reschedule", bookingHandler.RescheduleDoctor)
			}

			svc := booking.Group("/service")
			{
				svc.POST("", bookingHandler.BookService)
				svc.GET("", bookingHandler.MyServiceBookings)
				svc.POST("/:id/cancel", bookingHandler.CancelService)
				svc.POST("/:id/reschedule", bookingHandler.RescheduleService)
			}
		}

		authed.GET("/branches", availabilityHandler.Branches)

		availability := authed.Group("/availability")
		{
			availability.GET("/doctor/:id", availabilityHandler.DoctorAvailability)
			availability.GET("/service/:id", availabilityHandler.ServiceAvailability)
		}

		redeem := authed.Group("/redeem")
		{
			redeem.POST("", redeemHandler.Redeem)
			redeem.GET("/qpoints", redeemHandler.QPoints)
			redeem.GET("/history", redeemHandler.History)
		}

		admin := authed.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/booking/doctor/:id/complete", bookingHandler.CompleteDoctor)
			admin.POST("/booking/service/:id/complete", bookingHandler.CompleteService)
			admin.GET("/user/:id", userHandler.GetUserBookings)
			admin.GET("/metric", bookingHandler.Metrics)
			admin.GET("/redeem/users", redeemHandler.Users)
			admin.GET("/redeem/user/:id", redeemHandler.UserHistory)
		}
	}

	return router
}
