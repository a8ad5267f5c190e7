// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"collegebank/internal/cache"
	"collegebank/internal/handlers"
	"collegebank/internal/middleware"
	"collegebank/internal/services"

	_ "collegebank/internal/docs" // swagger docs
)

// Options configure the router.
type Options struct {
	AllowOverdraft bool
	// IdempotencyStore backs the Idempotency-Key header. Nil disables it.
	IdempotencyStore cache.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter builds the gin engine for the API.
func NewRouter(db *gorm.DB, opts Options) *gin.Engine {
	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	transactionService := services.NewTransactionService(db, opts.AllowOverdraft)
	accountService := services.NewAccountService(db, transactionService)
	paymentService := services.NewPaymentService(db, transactionService)
	statementService := services.NewStatementService(db)
	orderService := services.NewAdministrativeOrderService(db)
	ledgerService := services.NewLedgerEntryService(db)
	cashbookService := services.NewCashbookEntryService(db)
	budgetService := services.NewBudgetService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, statementService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService)
	orderHandler := handlers.NewAdministrativeOrderHandler(orderService, auditService)
	ledgerHandler := handlers.NewLedgerEntryHandler(ledgerService, auditService)
	cashbookHandler := handlers.NewCashbookEntryHandler(cashbookService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	auditHandler := handlers.NewAuditLogHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/users/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	idempotent := func(c *gin.Context) { c.Next() }
	if opts.IdempotencyStore != nil {
		ttl := opts.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		idempotent = middleware.Idempotency(opts.IdempotencyStore, ttl)
	}

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transactions are append-only: no update or delete routes.
	transactions := protected.Group("/transactions")
	transactions.POST("", idempotent, transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/statement", transactionHandler.GetStatement)
	transactions.GET("/:id", transactionHandler.GetTransaction)

	payments := protected.Group("/payments")
	payments.POST("", idempotent, paymentHandler.CreatePayment)
	payments.GET("", paymentHandler.ListPayments)
	payments.GET("/:id", paymentHandler.GetPayment)

	ledger := protected.Group("/ledger-entries")
	ledger.POST("", ledgerHandler.CreateLedgerEntry)
	ledger.GET("", ledgerHandler.ListLedgerEntries)
	ledger.GET("/:id", ledgerHandler.GetLedgerEntry)
	ledger.PUT("/:id", ledgerHandler.UpdateLedgerEntry)
	ledger.DELETE("/:id", ledgerHandler.DeleteLedgerEntry)

	cashbook := protected.Group("/cashbook-entries")
	cashbook.POST("", cashbookHandler.CreateCashbookEntry)
	cashbook.GET("", cashbookHandler.ListCashbookEntries)
	cashbook.GET("/:id", cashbookHandler.GetCashbookEntry)
	cashbook.PUT("/:id", cashbookHandler.UpdateCashbookEntry)
	cashbook.DELETE("/:id", cashbookHandler.DeleteCashbookEntry)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	orders := protected.Group("/administrative-orders")
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("", orderHandler.ListOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PUT("/:id", orderHandler.UpdateOrder)
	orders.DELETE("/:id", orderHandler.DeleteOrder)

	protected.GET("/audit-logs", auditHandler.ListAuditLogs)

	return router
}
