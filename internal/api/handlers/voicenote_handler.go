package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/services"
)

type VoiceNoteHandler struct {
	svc services.VoiceNoteService
}

func NewVoiceNoteHandler(svc services.VoiceNoteService) *VoiceNoteHandler {
	return &VoiceNoteHandler{svc: svc}
}

func (h *VoiceNoteHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.List(c.Request.Context(), userID, c.Param("plan_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voice_notes": rows})
}

func (h *VoiceNoteHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Remove(c.Request.Context(), userID, c.Param("note_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SignedURL returns a short-lived playback URL for the stored clip.
func (h *VoiceNoteHandler) SignedURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var ttl time.Duration
	if v := c.Query("ttl_seconds"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	url, err := h.svc.SignedURL(c.Request.Context(), userID, c.Param("note_id"), ttl)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
