package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lvji-app/lvji/internal/cache"
	"github.com/lvji-app/lvji/internal/models"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/utils"
)

const planDetailTTL = 5 * time.Minute

type PlanService interface {
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	CreateFromItinerary(ctx context.Context, plan *models.Plan, it *models.Itinerary) (*models.Plan, error)
	Get(ctx context.Context, userID, planID string) (*models.PlanDetail, error)
	List(ctx context.Context, userID string) ([]models.Plan, error)
	Update(ctx context.Context, userID string, plan *models.Plan) error
	Delete(ctx context.Context, userID, planID string) error

	// Authorize loads the plan and verifies ownership. Other services use it
	// before touching plan-scoped rows.
	Authorize(ctx context.Context, userID, planID string) (*models.Plan, error)
}

type planService struct {
	plans pgrepo.PlanRepository
	cache cache.Cache
}

func NewPlanService(plans pgrepo.PlanRepository, c cache.Cache) PlanService {
	return &planService{plans: plans, cache: c}
}

func planDetailKey(planID string) string {
	return fmt.Sprintf("plan:%s:detail", planID)
}

func (s *planService) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	const op = "PlanService.Create"

	if plan == nil || plan.UserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if plan.Title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	if err := s.plans.Create(ctx, plan, nil); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create plan", err)
	}
	return plan, nil
}

// CreateFromItinerary persists a generated itinerary as a plan with one
// segment per activity. Segment order within a day follows the model output.
func (s *planService) CreateFromItinerary(ctx context.Context, plan *models.Plan, it *models.Itinerary) (*models.Plan, error) {
	const op = "PlanService.CreateFromItinerary"

	if plan == nil || plan.UserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if it == nil || len(it.Itinerary) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "itinerary has no days", nil)
	}
	if plan.Title == "" {
		plan.Title = it.Itinerary[0].Summary
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	if breakdown, err := json.Marshal(it.Budget); err == nil {
		plan.BudgetBreakdown = breakdown
	}
	if plan.Budget == nil && it.Budget.Total > 0 {
		total := it.Budget.Total
		plan.Budget = &total
	}

	var segments []models.PlanSegment
	for _, day := range it.Itinerary {
		summary := day.Summary
		for i, act := range day.Activities {
			seg := models.PlanSegment{
				Day:       day.Day,
				Title:     act.Title,
				Budget:    act.Budget,
				SortOrder: i,
				CreatedAt: plan.CreatedAt,
			}
			if summary != "" {
				sum := summary
				seg.Summary = &sum
			}
			if act.Description != "" {
				d := act.Description
				seg.Description = &d
			}
			if act.StartTime != "" {
				t := act.StartTime
				seg.StartTime = &t
			}
			if act.EndTime != "" {
				t := act.EndTime
				seg.EndTime = &t
			}
			if act.POIID != "" {
				p := act.POIID
				seg.POIID = &p
			}
			segments = append(segments, seg)
		}
	}

	if err := s.plans.Create(ctx, plan, segments); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create plan", err)
	}
	return plan, nil
}

func (s *planService) Authorize(ctx context.Context, userID, planID string) (*models.Plan, error) {
	const op = "PlanService.Authorize"

	if userID == "" || planID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and plan_id are required", nil)
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "plan not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get plan", err)
	}
	if plan.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "plan belongs to another user", nil)
	}
	return plan, nil
}

func (s *planService) Get(ctx context.Context, userID, planID string) (*models.PlanDetail, error) {
	const op = "PlanService.Get"

	plan, err := s.Authorize(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	key := planDetailKey(planID)
	if s.cache != nil {
		var cached models.PlanDetail
		if hit, cerr := s.cache.GetJSON(ctx, key, &cached); cerr == nil && hit {
			return &cached, nil
		}
	}

	segments, err := s.plans.SegmentsByPlan(ctx, planID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load segments", err)
	}

	detail := assemblePlanDetail(*plan, segments)
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, detail, planDetailTTL)
	}
	return detail, nil
}

func assemblePlanDetail(plan models.Plan, segments []models.PlanSegment) *models.PlanDetail {
	byDay := map[int]*models.PlanDay{}
	var dayNumbers []int
	var total float64
	var haveBudget bool

	for _, seg := range segments {
		d, ok := byDay[seg.Day]
		if !ok {
			d = &models.PlanDay{Day: seg.Day, Summary: seg.Summary}
			byDay[seg.Day] = d
			dayNumbers = append(dayNumbers, seg.Day)
		}
		d.Activities = append(d.Activities, seg)
		if seg.Budget != nil {
			total += *seg.Budget
			haveBudget = true
		}
	}
	sort.Ints(dayNumbers)

	detail := &models.PlanDetail{Plan: plan}
	for _, n := range dayNumbers {
		detail.Days = append(detail.Days, *byDay[n])
	}
	if haveBudget {
		detail.TotalActivityBudget = &total
	}
	return detail
}

func (s *planService) List(ctx context.Context, userID string) ([]models.Plan, error) {
	const op = "PlanService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list plans", err)
	}
	return plans, nil
}

func (s *planService) Update(ctx context.Context, userID string, plan *models.Plan) error {
	const op = "PlanService.Update"

	if plan == nil || plan.ID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "plan id is required", nil)
	}
	if _, err := s.Authorize(ctx, userID, plan.ID); err != nil {
		return err
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "plan not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update plan", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, planDetailKey(plan.ID))
	}
	return nil
}

func (s *planService) Delete(ctx context.Context, userID, planID string) error {
	const op = "PlanService.Delete"

	if _, err := s.Authorize(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, planID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "plan not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete plan", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, planDetailKey(planID))
	}
	return nil
}
