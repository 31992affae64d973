package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetiq/internal/services"
)

// RecurringHandler exposes the recurring-transaction trigger.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	now              func() time.Time
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, now: time.Now}
}

// ProcessResult reports how many occurrences a run booked.
type ProcessResult struct {
	Created   int       `json:"created"`
	Processed time.Time `json:"processed_at"`
}

// ProcessDue handles a one-shot run of due recurring transactions
// @Summary     Process recurring transactions
// @Description Book every elapsed occurrence of due recurring transactions
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} ProcessResult "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Not configured"
// @Router      /internal/recurring/process [post]
func (h *RecurringHandler) ProcessDue(c *gin.Context) {
	now := h.now().UTC()

	created, err := h.recurringService.ProcessDue(c.Request.Context(), now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, ProcessResult{Created: created, Processed: now})
}
