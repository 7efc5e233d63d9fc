package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/models"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/storage"
	"github.com/lvji-app/lvji/internal/utils"
)

const defaultSignedURLTTL = 5 * time.Minute

type VoiceNoteService interface {
	List(ctx context.Context, userID, planID string) ([]models.VoiceNote, error)
	Remove(ctx context.Context, userID, noteID string) error
	SignedURL(ctx context.Context, userID, noteID string, ttl time.Duration) (string, error)
}

type voiceNoteService struct {
	notes pgrepo.VoiceNoteRepository
	plans PlanService
	blobs storage.BlobStore
	log   *logrus.Logger
}

func NewVoiceNoteService(notes pgrepo.VoiceNoteRepository, plans PlanService, blobs storage.BlobStore, log *logrus.Logger) VoiceNoteService {
	return &voiceNoteService{notes: notes, plans: plans, blobs: blobs, log: log}
}

func (s *voiceNoteService) List(ctx context.Context, userID, planID string) ([]models.VoiceNote, error) {
	const op = "VoiceNoteService.List"

	if _, err := s.plans.Authorize(ctx, userID, planID); err != nil {
		return nil, err
	}
	rows, err := s.notes.ListByPlan(ctx, planID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list voice notes", err)
	}
	return rows, nil
}

func (s *voiceNoteService) get(ctx context.Context, op, userID, noteID string) (*models.VoiceNote, error) {
	if noteID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "note_id is required", nil)
	}
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "voice note not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get voice note", err)
	}
	if _, err := s.plans.Authorize(ctx, userID, note.PlanID); err != nil {
		return nil, err
	}
	return note, nil
}

// Remove deletes the row first, then the blob. A blob delete failure leaves an
// orphaned object rather than a dangling row.
func (s *voiceNoteService) Remove(ctx context.Context, userID, noteID string) error {
	const op = "VoiceNoteService.Remove"

	note, err := s.get(ctx, op, userID, noteID)
	if err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "voice note not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete voice note", err)
	}
	if err := s.blobs.Delete(ctx, note.StoragePath); err != nil {
		s.log.WithError(err).WithField("path", note.StoragePath).Warn("voice note blob delete failed")
	}
	return nil
}

func (s *voiceNoteService) SignedURL(ctx context.Context, userID, noteID string, ttl time.Duration) (string, error) {
	const op = "VoiceNoteService.SignedURL"

	note, err := s.get(ctx, op, userID, noteID)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	url, err := s.blobs.SignedGetURL(ctx, note.StoragePath, ttl)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to sign url", err)
	}
	return url, nil
}
