package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/transaction-importer/internal/api_gateway/handler"
	"github.com/transaction-importer/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	importHandler *handler.ImportHandler,
	transactionHandler *handler.TransactionHandler,
	reportHandler *handler.ReportHandler,
) {
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))

	v1 := r.Group("/api/v1", middleware.RequireUser())
	{
		imports := v1.Group("/imports")
		{
			imports.POST("", importHandler.Upload)
			imports.GET("/:id", importHandler.GetByID)
			imports.GET("/:id/rejections", importHandler.ListRejections)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/customers/:customer_id/summary", reportHandler.CustomerSummary)
			reports.GET("/products/:product_id/summary", reportHandler.ProductSummary)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
