// Package router builds the HTTP route table shared by the API server and the
// end-to-end tests.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetiq/internal/handlers"
	"budgetiq/internal/middleware"
	"budgetiq/internal/services"
)

// Config holds the settings the route table depends on.
type Config struct {
	JWTSecret       string
	JWTIssuer       string
	RecurringAPIKey string
	RequestTimeout  time.Duration
}

// Services bundles the service implementations behind the handlers.
type Services struct {
	Account     services.AccountServicer
	Transaction services.TransactionServicer
	Budget      services.BudgetServicer
	Recurring   services.RecurringServicer
	Audit       services.AuditServicer
}

// New builds the Gin engine with middleware and every route registered.
func New(cfg Config, svc Services) *gin.Engine {
	accountHandler := handlers.NewAccountHandler(svc.Account, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Account, svc.Transaction, svc.Budget)
	recurringHandler := handlers.NewRecurringHandler(svc.Recurring)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if cfg.RequestTimeout > 0 {
		v1.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	}

	// Machine-to-machine routes
	internal := v1.Group("/internal")
	internal.Use(middleware.APIKeyMiddleware(cfg.RecurringAPIKey))
	internal.POST("/recurring/process", recurringHandler.ProcessDue)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id/default", accountHandler.UpdateDefaultAccount)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("/bulk-delete", transactionHandler.BulkDeleteTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)

	budget := protected.Group("/budget")
	budget.GET("/current", budgetHandler.GetCurrentBudget)
	budget.PUT("", budgetHandler.UpdateBudget)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return router
}
