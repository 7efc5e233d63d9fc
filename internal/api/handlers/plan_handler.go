package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/utils"
)

type PlanHandler struct {
	svc services.PlanService
}

func NewPlanHandler(svc services.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

type planRequest struct {
	Title       string   `json:"title"`
	Destination *string  `json:"destination,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string  `json:"end_date,omitempty"`
	PartySize   *int     `json:"party_size,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (r *planRequest) apply(plan *models.Plan) error {
	plan.Title = r.Title
	plan.Destination = r.Destination
	plan.PartySize = r.PartySize
	plan.Budget = r.Budget
	plan.Currency = r.Currency
	plan.Tags = r.Tags

	parseDate := func(s *string) (*time.Time, error) {
		if s == nil || *s == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", *s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	var err error
	if plan.StartDate, err = parseDate(r.StartDate); err != nil {
		return err
	}
	if plan.EndDate, err = parseDate(r.EndDate); err != nil {
		return err
	}
	return nil
}

func (h *PlanHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PlanHandler.Create", "invalid request body", err))
		return
	}

	plan := &models.Plan{UserID: userID}
	if err := req.apply(plan); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PlanHandler.Create", "dates must be YYYY-MM-DD", err))
		return
	}

	out, err := h.svc.Create(c.Request.Context(), plan)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plans, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *PlanHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), userID, c.Param("plan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *PlanHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PlanHandler.Update", "invalid request body", err))
		return
	}

	plan := &models.Plan{ID: c.Param("plan_id")}
	if err := req.apply(plan); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PlanHandler.Update", "dates must be YYYY-MM-DD", err))
		return
	}

	if err := h.svc.Update(c.Request.Context(), userID, plan); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *PlanHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("plan_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
