package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetiq/internal/errors"
	"budgetiq/internal/models"
	"budgetiq/internal/money"
	"budgetiq/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for opening an account.
type CreateAccountRequest struct {
	Name      string             `json:"name" binding:"required,max=100"`
	Type      models.AccountType `json:"type" binding:"required,account_type"`
	Balance   money.Amount       `json:"balance"`
	IsDefault bool               `json:"is_default"`
}

// UpdateDefaultRequest represents the request payload for toggling the default flag.
type UpdateDefaultRequest struct {
	IsDefault *bool `json:"is_default" binding:"required"`
}

// CreateAccount handles opening a new account
// @Summary     Create an account
// @Description Open a CURRENT or SAVINGS account. The first account becomes the default; a non-zero balance is booked as an opening transaction.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	subject, err := getSubject(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), services.AccountInput{
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, models.AuditCreateAccount, models.ResourceAccount, account.ID, c.ClientIP(),
		map[string]interface{}{"type": account.Type, "balance": account.Balance.String(), "is_default": account.IsDefault})

	respondOK(c, http.StatusCreated, account)
}

// GetAccounts handles listing all accounts
// @Summary     List accounts
// @Description List every account, newest first, with its transaction count
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.AccountSummary "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	accounts, err := h.accountService.GetAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, accounts)
}

// GetAccount handles retrieving an account with its transactions
// @Summary     Get account with transactions
// @Description Get an account and all of its transactions, newest first
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} services.AccountDetail "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.accountService.GetAccountWithTransactions(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, detail)
}

// UpdateDefaultAccount handles setting or clearing the default flag
// @Summary     Update default account
// @Description Make the account the default. Clearing the flag on the current default is rejected because one default account must always exist.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateDefaultRequest true "Default flag"
// @Success     200 {object} models.Account "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input or default account required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/default [put]
func (h *AccountHandler) UpdateDefaultAccount(c *gin.Context) {
	subject, err := getSubject(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()

	if !*req.IsDefault {
		account, err := h.accountService.GetAccountByID(ctx, accountID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if account.IsDefault {
			respondWithError(c, apperrors.ErrDefaultAccountRequired)
			return
		}
		respondOK(c, http.StatusOK, account)
		return
	}

	account, err := h.accountService.UpdateDefaultAccount(ctx, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, models.AuditUpdateDefaultAccount, models.ResourceAccount, account.ID, c.ClientIP(), nil)

	respondOK(c, http.StatusOK, account)
}
