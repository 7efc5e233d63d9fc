package postgres

import (
	"context"
	"errors"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan, segments []models.PlanSegment) error
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	ListByUser(ctx context.Context, userID string) ([]models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id string) error
	SegmentsByPlan(ctx context.Context, planID string) ([]models.PlanSegment, error)
}

type planRepo struct {
	db *gorm.DB
}

func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

// Create inserts the plan and its segments in one transaction so a partial
// itinerary never becomes visible.
func (r *planRepo) Create(ctx context.Context, plan *models.Plan, segments []models.PlanSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		if len(segments) == 0 {
			return nil
		}
		for i := range segments {
			segments[i].PlanID = plan.ID
		}
		return tx.Create(&segments).Error
	})
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &plan, err
}

func (r *planRepo) ListByUser(ctx context.Context, userID string) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepo) Update(ctx context.Context, plan *models.Plan) error {
	res := r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]any{
			"title":       plan.Title,
			"destination": plan.Destination,
			"start_date":  plan.StartDate,
			"end_date":    plan.EndDate,
			"party_size":  plan.PartySize,
			"budget":      plan.Budget,
			"currency":    plan.Currency,
			"tags":        plan.Tags,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// Delete removes the plan with its segments, expenses and voice-note rows.
func (r *planRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&models.PlanSegment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&models.VoiceNote{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Plan{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return nil
	})
}

func (r *planRepo) SegmentsByPlan(ctx context.Context, planID string) ([]models.PlanSegment, error) {
	var segments []models.PlanSegment
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("day ASC, sort_order ASC").
		Find(&segments).Error
	return segments, err
}
