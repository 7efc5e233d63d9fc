package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lvji-app/lvji/internal/services"
	"github.com/lvji-app/lvji/internal/utils"
)

// maxAudioBytes caps uploaded clips at 10 MiB, roughly five minutes of
// 16 kHz mono PCM.
const maxAudioBytes = 10 << 20

type VoiceHandler struct {
	voice services.VoiceService
}

func NewVoiceHandler(voice services.VoiceService) *VoiceHandler {
	return &VoiceHandler{voice: voice}
}

// Transcribe accepts a multipart upload under the "audio" field and returns
// the final transcript with a draft expense.
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	const op = "VoiceHandler.Transcribe"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "multipart field 'audio' is required", err))
		return
	}
	if fh.Size > maxAudioBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio exceeds the 10MB limit", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer f.Close()

	blob, err := io.ReadAll(io.LimitReader(f, maxAudioBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	if len(blob) > maxAudioBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio exceeds the 10MB limit", nil))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.voice.TranscribeExpense(c.Request.Context(), userID, c.Param("plan_id"), blob, contentType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AuditTrail is the ops view of recent recognition sessions for a plan.
func (h *VoiceHandler) AuditTrail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	rows, err := h.voice.AuditTrail(c.Request.Context(), c.Param("plan_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcriptions": rows})
}
