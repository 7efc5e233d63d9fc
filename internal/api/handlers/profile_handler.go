package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/utils"
	"gorm.io/datatypes"
)

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID, c.GetString("email"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

type UpdateProfileRequest struct {
	DisplayName           *string `json:"display_name,omitempty"`
	DefaultCurrency       *string `json:"default_currency,omitempty"`
	DefaultCompanionCount *int    `json:"default_companion_count,omitempty"`

	// JSONB field (raw)
	Preferences *json.RawMessage `json:"preferences,omitempty"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}

	// Load existing (first access creates a blank profile)
	existing, err := h.svc.GetMe(c.Request.Context(), userID, c.GetString("email"))
	if err != nil {
		writeError(c, err)
		return
	}

	// Apply partial updates
	if req.DisplayName != nil {
		existing.DisplayName = req.DisplayName
	}
	if req.DefaultCurrency != nil {
		existing.DefaultCurrency = req.DefaultCurrency
	}
	if req.DefaultCompanionCount != nil {
		existing.DefaultCompanionCount = req.DefaultCompanionCount
	}
	if req.Preferences != nil {
		existing.Preferences = datatypes.JSON(*req.Preferences)
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := h.svc.Update(c.Request.Context(), existing); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, existing)
}
