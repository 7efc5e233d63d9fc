package postgres

import (
	"context"
	"errors"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *profileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "default_currency", "default_companion_count", "preferences", "updated_at"}),
		}).
		Create(p).Error
}
