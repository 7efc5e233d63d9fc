package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/utils"
)

type ExpenseHandler struct {
	svc services.ExpenseService
}

func NewExpenseHandler(svc services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

type createExpenseRequest struct {
	Amount    float64 `json:"amount"`
	Currency  *string `json:"currency,omitempty"`
	Category  *string `json:"category,omitempty"`
	Method    *string `json:"method,omitempty"`
	Source    *string `json:"source,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"` // RFC 3339
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ExpenseHandler.Create", "invalid request body", err))
		return
	}

	e := &models.Expense{
		PlanID:   c.Param("plan_id"),
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Method:   req.Method,
		Source:   req.Source,
		Notes:    req.Notes,
	}
	if req.Timestamp != nil && *req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ExpenseHandler.Create", "timestamp must be RFC 3339", err))
			return
		}
		e.Timestamp = ts.UTC()
	}

	out, err := h.svc.Create(c.Request.Context(), userID, e)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID, c.Param("plan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": rows})
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("expense_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ExpenseHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, c.Param("plan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
