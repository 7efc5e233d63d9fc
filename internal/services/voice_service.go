package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/metrics"
	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/providers/stt"
	mongorepo "github.com/lvji-app/lvji/internal/repositories/mongo"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/storage"
	"github.com/lvji-app/lvji/internal/utils"
	"github.com/lvji-app/lvji/internal/voiceparse"
)

// VoiceCaptureResult is the outcome of one voice expense capture: the final
// transcript plus a draft for the client to confirm.
type VoiceCaptureResult struct {
	TranscriptionID string       `json:"transcription_id"`
	VoiceNoteID     string       `json:"voice_note_id"`
	Transcript      string       `json:"transcript"`
	DurationMS      int64        `json:"duration_ms"`
	Draft           ExpenseDraft `json:"draft"`
}

type VoiceService interface {
	TranscribeExpense(ctx context.Context, userID, planID string, blob []byte, contentType string) (*VoiceCaptureResult, error)

	// AuditTrail lists recognition sessions for a plan. Ops only, no
	// ownership check.
	AuditTrail(ctx context.Context, planID string, limit int) ([]models.Transcription, error)
}

type voiceService struct {
	plans   PlanService
	stt     stt.Provider
	blobs   storage.BlobStore
	notes   pgrepo.VoiceNoteRepository
	audits  mongorepo.TranscriptionRepository
	rdb     *redis.Client
	metrics *metrics.Metrics
	log     *logrus.Logger
}

func NewVoiceService(
	plans PlanService,
	provider stt.Provider,
	blobs storage.BlobStore,
	notes pgrepo.VoiceNoteRepository,
	audits mongorepo.TranscriptionRepository,
	rdb *redis.Client,
	m *metrics.Metrics,
	log *logrus.Logger,
) VoiceService {
	return &voiceService{
		plans:   plans,
		stt:     provider,
		blobs:   blobs,
		notes:   notes,
		audits:  audits,
		rdb:     rdb,
		metrics: m,
		log:     log,
	}
}

func statusChannel(transcriptionID string) string {
	return fmt.Sprintf("transcription:%s:status", transcriptionID)
}

func partialChannel(transcriptionID string) string {
	return fmt.Sprintf("transcription:%s:partial", transcriptionID)
}

func (s *voiceService) publish(ctx context.Context, channel string, payload any) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, channel, b).Err(); err != nil {
		s.log.WithError(err).WithField("channel", channel).Warn("redis publish failed")
	}
}

func (s *voiceService) TranscribeExpense(ctx context.Context, userID, planID string, blob []byte, contentType string) (*VoiceCaptureResult, error) {
	const op = "VoiceService.TranscribeExpense"

	if len(blob) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio is required", nil)
	}

	plan, err := s.plans.Authorize(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	transcriptionID := uuid.NewString()
	audit := &models.Transcription{
		TranscriptionID: transcriptionID,
		UserID:          userID,
		PlanID:          planID,
		Status:          models.TranscriptionStreaming,
		AudioBytes:      len(blob),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record transcription", err)
	}
	s.publish(ctx, statusChannel(transcriptionID), map[string]any{
		"type":   "status",
		"status": models.TranscriptionStreaming,
	})

	log := s.log.WithFields(logrus.Fields{
		"transcription_id": transcriptionID,
		"plan_id":          planID,
		"audio_bytes":      len(blob),
	})

	result, err := s.stt.Transcribe(ctx, blob, contentType, func(partial string) {
		s.publish(ctx, partialChannel(transcriptionID), map[string]any{
			"type":       "partial",
			"transcript": partial,
		})
	})
	if err != nil {
		code := failureCode(err)
		log.WithError(err).WithField("code", code).Warn("transcription failed")
		if aerr := s.audits.Fail(ctx, transcriptionID, code, result.DurationMS); aerr != nil {
			log.WithError(aerr).Warn("failed to record transcription failure")
		}
		s.publish(ctx, statusChannel(transcriptionID), map[string]any{
			"type":   "status",
			"status": models.TranscriptionFailed,
			"code":   code,
		})
		return nil, err
	}

	objectName := storage.VoiceNoteObjectName(planID, contentType, time.Now().UTC())
	storedPath, err := s.blobs.Upload(ctx, objectName, contentType, bytes.NewReader(blob))
	if err != nil {
		log.WithError(err).Error("voice note upload failed")
		return nil, utils.E(utils.CodeInternal, op, "failed to store audio", err)
	}

	transcript := result.Text
	note := &models.VoiceNote{
		PlanID:      planID,
		StoragePath: storedPath,
		Transcript:  &transcript,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		// keep storage consistent with the table
		if derr := s.blobs.Delete(ctx, storedPath); derr != nil {
			log.WithError(derr).Warn("orphaned blob cleanup failed")
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save voice note", err)
	}

	parsed := voiceparse.Parse(transcript)
	if s.metrics != nil {
		if parsed.Amount != nil {
			s.metrics.ExtractionAmountHits.Inc()
		}
		if parsed.Category != nil {
			s.metrics.ExtractionCategoryHits.Inc()
		}
		if parsed.Method != nil {
			s.metrics.ExtractionMethodHits.Inc()
		}
	}

	if err := s.audits.Complete(ctx, transcriptionID, transcript, result.FramesSent, result.DurationMS); err != nil {
		log.WithError(err).Warn("failed to record transcription completion")
	}
	s.publish(ctx, statusChannel(transcriptionID), map[string]any{
		"type":       "status",
		"status":     models.TranscriptionDone,
		"transcript": transcript,
	})

	log.WithFields(logrus.Fields{
		"frames_sent":      result.FramesSent,
		"transcript_runes": len([]rune(transcript)),
	}).Info("voice expense transcribed")

	return &VoiceCaptureResult{
		TranscriptionID: transcriptionID,
		VoiceNoteID:     note.ID,
		Transcript:      transcript,
		DurationMS:      result.DurationMS,
		Draft:           BuildExpenseDraft(plan, parsed),
	}, nil
}

func (s *voiceService) AuditTrail(ctx context.Context, planID string, limit int) ([]models.Transcription, error) {
	const op = "VoiceService.AuditTrail"

	if planID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "plan_id is required", nil)
	}
	rows, err := s.audits.ListByPlan(ctx, planID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcriptions", err)
	}
	return rows, nil
}

func failureCode(err error) string {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	return string(utils.CodeInternal)
}
