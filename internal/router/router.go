package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	productController *controller.ProductController
	reviewController  *controller.ReviewController
	orderController   *controller.OrderController
	reportController  *controller.ReportController
	eventController   *controller.EventController
	healthController  *controller.HealthController
	config            *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	orderController *controller.OrderController,
	reportController *controller.ReportController,
	eventController *controller.EventController,
	healthController *controller.HealthController,
	cfg *config.Config,
) *Router {
	return &Router{
		productController: productController,
		reviewController:  reviewController,
		orderController:   orderController,
		reportController:  reportController,
		eventController:   eventController,
		healthController:  healthController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.healthController.Health)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.POST("", r.productController.CreateProduct)
			products.GET("/:id", r.productController.GetProductByID)
			products.PATCH("/:id", r.productController.UpdateProduct)
			products.DELETE("/:id", r.productController.DeleteProduct)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
			products.POST("/:id/reviews", r.reviewController.CreateReview)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", r.reviewController.CreateReview)
			reviews.GET("/:id", r.reviewController.GetReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", r.orderController.GetOrders)
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.DELETE("/:id", r.orderController.CancelOrder)
		}

		v1.GET("/reports/orders.xlsx", r.reportController.DownloadOrdersReport)

		if r.eventController != nil {
			v1.GET("/ws/orders", r.eventController.SubscribeOrders)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Requested-With", controller.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
