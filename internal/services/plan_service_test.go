package services

import (
	"context"
	"testing"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
)

type fakePlanRepo struct {
	plans    map[string]*models.Plan
	segments map[string][]models.PlanSegment

	created     *models.Plan
	createdSegs []models.PlanSegment
	deleted     []string
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:    map[string]*models.Plan{},
		segments: map[string][]models.PlanSegment{},
	}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *models.Plan, segments []models.PlanSegment) error {
	if plan.ID == "" {
		plan.ID = "plan-created"
	}
	r.created = plan
	r.createdSegs = segments
	r.plans[plan.ID] = plan
	r.segments[plan.ID] = segments
	return nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id string) (*models.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) ListByUser(_ context.Context, userID string) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, plan *models.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return utils.ErrNotFound
	}
	r.plans[plan.ID].Title = plan.Title
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.plans[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.plans, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakePlanRepo) SegmentsByPlan(_ context.Context, planID string) ([]models.PlanSegment, error) {
	return r.segments[planID], nil
}

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }

func TestAuthorizeRejectsForeignPlan(t *testing.T) {
	repo := newFakePlanRepo()
	repo.plans["p1"] = &models.Plan{ID: "p1", UserID: "alice"}
	svc := NewPlanService(repo, nil)

	if _, err := svc.Authorize(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if _, err := svc.Authorize(context.Background(), "bob", "p1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for non-owner, got %v", err)
	}
	if _, err := svc.Authorize(context.Background(), "alice", "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateFromItineraryBuildsSegments(t *testing.T) {
	repo := newFakePlanRepo()
	svc := NewPlanService(repo, nil)

	it := &models.Itinerary{
		Itinerary: []models.ItineraryDay{
			{Day: 1, Summary: "到达", Activities: []models.ItineraryActivity{
				{Title: "外滩", Budget: f64ptr(0)},
				{Title: "晚餐", Budget: f64ptr(200), StartTime: "18:00"},
			}},
			{Day: 2, Summary: "市区", Activities: []models.ItineraryActivity{
				{Title: "博物馆", Description: "上午参观"},
			}},
		},
		Budget: models.ItineraryBudget{Total: 1500},
	}

	plan, err := svc.CreateFromItinerary(context.Background(), &models.Plan{UserID: "alice", Title: "上海行"}, it)
	if err != nil {
		t.Fatalf("CreateFromItinerary failed: %v", err)
	}
	if plan.Budget == nil || *plan.Budget != 1500 {
		t.Errorf("plan budget should default to itinerary total, got %v", plan.Budget)
	}
	if len(plan.BudgetBreakdown) == 0 {
		t.Error("budget breakdown not recorded")
	}

	segs := repo.createdSegs
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].Day != 1 || segs[0].SortOrder != 0 || segs[0].Title != "外滩" {
		t.Errorf("unexpected first segment: %+v", segs[0])
	}
	if segs[1].SortOrder != 1 || segs[1].StartTime == nil || *segs[1].StartTime != "18:00" {
		t.Errorf("unexpected second segment: %+v", segs[1])
	}
	if segs[2].Day != 2 || segs[2].Summary == nil || *segs[2].Summary != "市区" {
		t.Errorf("day summary not carried to segment: %+v", segs[2])
	}
}

func TestAssemblePlanDetail(t *testing.T) {
	plan := models.Plan{ID: "p1"}
	segments := []models.PlanSegment{
		{Day: 2, SortOrder: 0, Title: "b", Budget: f64ptr(50), Summary: strptr("第二天")},
		{Day: 1, SortOrder: 0, Title: "a", Budget: f64ptr(100)},
		{Day: 1, SortOrder: 1, Title: "c"},
	}

	detail := assemblePlanDetail(plan, segments)
	if len(detail.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(detail.Days))
	}
	if detail.Days[0].Day != 1 || detail.Days[1].Day != 2 {
		t.Errorf("days not sorted: %+v", detail.Days)
	}
	if len(detail.Days[0].Activities) != 2 {
		t.Errorf("day 1 should have 2 activities, got %d", len(detail.Days[0].Activities))
	}
	if detail.TotalActivityBudget == nil || *detail.TotalActivityBudget != 150 {
		t.Errorf("expected total budget 150, got %v", detail.TotalActivityBudget)
	}
}

func TestAssemblePlanDetailNoBudgets(t *testing.T) {
	detail := assemblePlanDetail(models.Plan{}, []models.PlanSegment{{Day: 1, Title: "a"}})
	if detail.TotalActivityBudget != nil {
		t.Errorf("total budget should be nil without segment budgets, got %v", *detail.TotalActivityBudget)
	}
}
