package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/veloxfin/velox-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.APITokenAuthMiddleware, rateLimiter *middleware.RateLimiter, planHandler *PlanHandler, quoteHandler *QuoteHandler, contractHandler *ContractHandler, paymentHandler *PaymentHandler, apiTokenHandler *APITokenHandler, wsHandler *WebSocketHandler) {
	// WebSocket endpoint authenticates via query parameter
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1 (protected)
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Plan routes
	plans := api.Group("/plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.GetPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.POST("/:id/variants", planHandler.AddVariant)
	plans.DELETE("/:id", planHandler.DeactivatePlan)

	// Quote routes
	api.POST("/quotes", quoteHandler.Quote)

	// Contract routes
	contracts := api.Group("/contracts")
	contracts.POST("", contractHandler.CreateContract)
	contracts.GET("/:id", contractHandler.GetContract)
	contracts.POST("/:id/close", contractHandler.CloseContract)
	contracts.POST("/:id/default", contractHandler.DefaultContract)

	// Payment routes
	contracts.POST("/:id/payments", paymentHandler.RecordPayment)
	contracts.GET("/:id/payments", paymentHandler.GetPayments)
	contracts.GET("/:id/payments/stats", paymentHandler.GetPaymentStats)

	// Investor routes
	api.GET("/investors/:investorId/contracts", contractHandler.GetContractsByInvestor)

	// API token routes
	tokens := api.Group("/api-tokens")
	tokens.POST("", apiTokenHandler.CreateAPIToken)
	tokens.GET("", apiTokenHandler.GetAPITokens)
	tokens.DELETE("/:id", apiTokenHandler.RevokeAPIToken)
}
