package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CurrentBudgetQuery holds the query parameters for the current budget.
type CurrentBudgetQuery struct {
	AccountID string `form:"account_id" binding:"required,uuid"`
}

// UpdateBudgetRequest represents the request payload for setting the budget.
type UpdateBudgetRequest struct {
	Amount money.Amount `json:"amount" swaggertype:"number" example:"1500"`
}

// GetCurrentBudget handles retrieving the budget with this month's spending
// @Summary     Get current budget
// @Description Get the monthly budget and the account's expenses for the current calendar month
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Param       account_id query string true "Account ID"
// @Success     200 {object} services.CurrentBudget "Budget and current expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget/current [get]
func (h *BudgetHandler) GetCurrentBudget(c *gin.Context) {
	var q CurrentBudgetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.budgetService.GetCurrentBudget(c.Request.Context(), q.AccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// UpdateBudget handles setting the monthly budget
// @Summary     Update budget
// @Description Set the monthly budget amount, creating it if absent
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateBudgetRequest true "Budget amount"
// @Success     200 {object} models.Budget "Budget"
// @Failure     400 {object} ErrorResponse "Invalid budget amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	subject, err := getSubject(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, models.AuditUpdateBudget, models.ResourceBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"amount": budget.Amount.String()})

	respondOK(c, http.StatusOK, budget)
}
