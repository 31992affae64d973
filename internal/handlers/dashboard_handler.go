package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/pagination"
	"budgetiq/internal/services"
)

const recentTransactionLimit = 5

// DashboardHandler assembles the overview shown on the dashboard.
type DashboardHandler struct {
	accountService     services.AccountServicer
	transactionService services.TransactionServicer
	budgetService      services.BudgetServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	accountService services.AccountServicer,
	transactionService services.TransactionServicer,
	budgetService services.BudgetServicer,
) *DashboardHandler {
	return &DashboardHandler{
		accountService:     accountService,
		transactionService: transactionService,
		budgetService:      budgetService,
	}
}

// Dashboard is the dashboard payload. DefaultAccountID and Budget are null
// until a default account exists.
type Dashboard struct {
	Accounts           []services.AccountSummary `json:"accounts"`
	DefaultAccountID   *string                   `json:"default_account_id"`
	Budget             *services.CurrentBudget   `json:"budget"`
	RecentTransactions []models.Transaction      `json:"recent_transactions"`
}

// GetDashboard handles the dashboard overview
// @Summary     Get dashboard
// @Description Accounts with transaction counts, the default account's current budget, and the most recent transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	accounts, err := h.accountService.GetAccounts(ctx)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard := Dashboard{Accounts: accounts}

	def, err := h.accountService.GetDefaultAccount(ctx)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
	case err != nil:
		respondWithError(c, err)
		return
	default:
		dashboard.DefaultAccountID = &def.ID
		budget, err := h.budgetService.GetCurrentBudget(ctx, def.ID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		dashboard.Budget = budget
	}

	recent, err := h.transactionService.GetUserTransactions(ctx,
		pagination.PageRequest{Page: 1, PageSize: recentTransactionLimit}, services.TransactionFilter{})
	if err != nil {
		respondWithError(c, err)
		return
	}
	dashboard.RecentTransactions = recent.Data

	respondOK(c, http.StatusOK, dashboard)
}
