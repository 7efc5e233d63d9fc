package postgres

import (
	"context"
	"errors"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	ListByPlan(ctx context.Context, planID string) ([]models.Expense, error)
	Delete(ctx context.Context, id string) error
	SumByCategory(ctx context.Context, planID string) ([]models.CategoryTotal, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, e *models.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	var e models.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &e, err
}

func (r *expenseRepo) ListByPlan(ctx context.Context, planID string) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("timestamp DESC").
		Find(&rows).Error
	return rows, err
}

func (r *expenseRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// SumByCategory aggregates spend per category. Uncategorized rows are grouped
// under the empty string so the caller can label them.
func (r *expenseRepo) SumByCategory(ctx context.Context, planID string) ([]models.CategoryTotal, error) {
	var rows []models.CategoryTotal
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(category, '') AS category, SUM(amount) AS total, COUNT(*) AS count").
		Where("plan_id = ?", planID).
		Group("COALESCE(category, '')").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}
