package services

import (
	"context"
	"errors"
	"time"

	"github.com/lvji-app/lvji/internal/models"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/utils"
	"github.com/lvji-app/lvji/internal/voiceparse"
)

// ExpenseDraft is a voice-extracted expense awaiting user confirmation.
// Nothing is written to the expenses table until the client confirms it.
type ExpenseDraft struct {
	PlanID   string   `json:"plan_id"`
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
	Category *string  `json:"category"`
	Method   *string  `json:"method"`
	Notes    string   `json:"notes"`
	Source   string   `json:"source"`
}

// ExpenseSummary aggregates a plan's spend against its budget.
type ExpenseSummary struct {
	PlanID     string                 `json:"plan_id"`
	Total      float64                `json:"total"`
	Currency   *string                `json:"currency"`
	Budget     *float64               `json:"budget"`
	Remaining  *float64               `json:"remaining"`
	ByCategory []models.CategoryTotal `json:"by_category"`
}

type ExpenseService interface {
	Create(ctx context.Context, userID string, e *models.Expense) (*models.Expense, error)
	List(ctx context.Context, userID, planID string) ([]models.Expense, error)
	Delete(ctx context.Context, userID, expenseID string) error
	Summary(ctx context.Context, userID, planID string) (*ExpenseSummary, error)
}

type expenseService struct {
	expenses pgrepo.ExpenseRepository
	plans    PlanService
}

func NewExpenseService(expenses pgrepo.ExpenseRepository, plans PlanService) ExpenseService {
	return &expenseService{expenses: expenses, plans: plans}
}

// BuildExpenseDraft turns extractor output into a confirmable draft. The
// currency falls back to the plan currency when the transcript carried no
// explicit marker.
func BuildExpenseDraft(plan *models.Plan, parsed voiceparse.ParsedExpense) ExpenseDraft {
	currency := parsed.Currency
	if currency == voiceparse.DefaultCurrency && plan.Currency != nil && *plan.Currency != "" {
		currency = *plan.Currency
	}
	return ExpenseDraft{
		PlanID:   plan.ID,
		Amount:   parsed.Amount,
		Currency: currency,
		Category: parsed.Category,
		Method:   parsed.Method,
		Notes:    parsed.Notes,
		Source:   models.ExpenseSourceVoice,
	}
}

func (s *expenseService) Create(ctx context.Context, userID string, e *models.Expense) (*models.Expense, error) {
	const op = "ExpenseService.Create"

	if e == nil || e.PlanID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "plan_id is required", nil)
	}
	if e.Amount <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "amount must be positive", nil)
	}

	plan, err := s.plans.Authorize(ctx, userID, e.PlanID)
	if err != nil {
		return nil, err
	}
	if e.Currency == nil || *e.Currency == "" {
		if plan.Currency != nil && *plan.Currency != "" {
			e.Currency = plan.Currency
		} else {
			cny := voiceparse.DefaultCurrency
			e.Currency = &cny
		}
	}
	if e.Source == nil || *e.Source == "" {
		src := models.ExpenseSourceManual
		e.Source = &src
	}
	now := time.Now().UTC()
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}

	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create expense", err)
	}
	return e, nil
}

func (s *expenseService) List(ctx context.Context, userID, planID string) ([]models.Expense, error) {
	const op = "ExpenseService.List"

	if _, err := s.plans.Authorize(ctx, userID, planID); err != nil {
		return nil, err
	}
	rows, err := s.expenses.ListByPlan(ctx, planID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list expenses", err)
	}
	return rows, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, expenseID string) error {
	const op = "ExpenseService.Delete"

	if expenseID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "expense_id is required", nil)
	}
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "expense not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get expense", err)
	}
	if _, err := s.plans.Authorize(ctx, userID, e.PlanID); err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "expense not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete expense", err)
	}
	return nil
}

func (s *expenseService) Summary(ctx context.Context, userID, planID string) (*ExpenseSummary, error) {
	const op = "ExpenseService.Summary"

	plan, err := s.plans.Authorize(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.expenses.SumByCategory(ctx, planID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to summarize expenses", err)
	}

	summary := &ExpenseSummary{
		PlanID:     planID,
		Currency:   plan.Currency,
		Budget:     plan.Budget,
		ByCategory: byCategory,
	}
	for _, row := range byCategory {
		summary.Total += row.Total
	}
	if plan.Budget != nil {
		remaining := *plan.Budget - summary.Total
		summary.Remaining = &remaining
	}
	return summary, nil
}
