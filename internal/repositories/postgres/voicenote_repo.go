package postgres

import (
	"context"
	"errors"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
	"gorm.io/gorm"
)

type VoiceNoteRepository interface {
	Create(ctx context.Context, n *models.VoiceNote) error
	GetByID(ctx context.Context, id string) (*models.VoiceNote, error)
	ListByPlan(ctx context.Context, planID string) ([]models.VoiceNote, error)
	Delete(ctx context.Context, id string) error
}

type voiceNoteRepo struct {
	db *gorm.DB
}

func NewVoiceNoteRepo(db *gorm.DB) VoiceNoteRepository {
	return &voiceNoteRepo{db: db}
}

func (r *voiceNoteRepo) Create(ctx context.Context, n *models.VoiceNote) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *voiceNoteRepo) GetByID(ctx context.Context, id string) (*models.VoiceNote, error) {
	var n models.VoiceNote
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &n, err
}

func (r *voiceNoteRepo) ListByPlan(ctx context.Context, planID string) ([]models.VoiceNote, error) {
	var rows []models.VoiceNote
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *voiceNoteRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VoiceNote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
