package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/utils"
)

type ItineraryHandler struct {
	itineraries services.ItineraryService
	plans       services.PlanService
}

func NewItineraryHandler(itineraries services.ItineraryService, plans services.PlanService) *ItineraryHandler {
	return &ItineraryHandler{itineraries: itineraries, plans: plans}
}

type generateItineraryRequest struct {
	Prompt string `json:"prompt"`

	// When Save is set the itinerary is persisted as a plan immediately.
	Save        bool     `json:"save,omitempty"`
	Title       string   `json:"title,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	PartySize   *int     `json:"party_size,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

func (h *ItineraryHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req generateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ItineraryHandler.Generate", "invalid request body", err))
		return
	}

	it, err := h.itineraries.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}

	if !req.Save {
		c.JSON(http.StatusOK, gin.H{"itinerary": it})
		return
	}

	plan := &models.Plan{
		UserID:      userID,
		Title:       req.Title,
		Destination: req.Destination,
		Currency:    req.Currency,
		PartySize:   req.PartySize,
		Budget:      req.Budget,
	}
	plan, err = h.plans.CreateFromItinerary(c.Request.Context(), plan, it)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"itinerary": it, "plan": plan})
}
