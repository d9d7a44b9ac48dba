package routes

import (
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	depositHandler *handler.DepositHandler,
	statusHandler *handler.StatusHandler,
	walletHandler *handler.WalletHandler,
	adminHandler *handler.AdminHandler,
) {
	// Wallet routes
	walletRoutes := router.Group("/wallet")
	{
		// GET /wallet/:userId/balance
		walletRoutes.GET("/:userId/balance", walletHandler.GetBalance)

		// POST /wallet/:userId/deposit
		walletRoutes.POST("/:userId/deposit", depositHandler.CreateDeposit)
	}

	// Transaction routes
	transactionRoutes := router.Group("/transactions")
	{
		// GET /transactions/:id/status
		transactionRoutes.GET("/:id/status", statusHandler.GetStatus)
	}

	// Admin review routes
	adminRoutes := router.Group("/admin")
	{
		// GET /admin/manual-payments
		adminRoutes.GET("/manual-payments", adminHandler.ListPendingManualPayments)

		// POST /admin/manual-payments/:id/approve
		adminRoutes.POST("/manual-payments/:id/approve", adminHandler.ApproveManualPayment)

		// POST /admin/manual-payments/:id/reject
		adminRoutes.POST("/manual-payments/:id/reject", adminHandler.RejectManualPayment)

		// GET /admin/stuck-transactions
		adminRoutes.GET("/stuck-transactions", adminHandler.ListStuckTransactions)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
