package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/server/http/handlers"
	"github.com/polkiloo/orderdesk/internal/server/http/middleware"
)

// Setup configures the gin router with handlers and middleware.
func Setup(facade handlers.DeskFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	templateHandler := handlers.NewTemplateHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	api.POST("/admin/login", authHandler.Login)
	api.GET("/payment/callback", paymentHandler.Callback)
	api.POST("/payment/callback", paymentHandler.Callback)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(facade))

	admin.GET("/orders", orderHandler.List)
	admin.GET("/orders/:id", orderHandler.Get)
	admin.POST("/orders/:id/take", orderHandler.Take)
	admin.POST("/orders/:id/price", orderHandler.SetPrice)
	admin.POST("/orders/:id/deliver", orderHandler.Deliver)
	admin.POST("/orders/:id/complete", orderHandler.Complete)
	admin.POST("/orders/:id/cancel", orderHandler.Cancel)
	admin.PUT("/orders/:id/tags", orderHandler.Tags)
	admin.POST("/orders/:id/message", orderHandler.Message)
	admin.GET("/orders/:id/history", orderHandler.History)
	admin.GET("/orders/:id/archive", orderHandler.Archive)
	admin.DELETE("/orders/:id", orderHandler.Purge)

	admin.POST("/templates", templateHandler.Create)
	admin.GET("/templates", templateHandler.List)
	admin.GET("/templates/:id", templateHandler.Get)
	admin.DELETE("/templates/:id", templateHandler.Delete)

	return engine
}
