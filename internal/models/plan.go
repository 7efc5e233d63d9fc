package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Plan struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string  `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Title       string  `gorm:"column:title;type:text" json:"title"`
	Destination *string `gorm:"column:destination;type:text" json:"destination"`

	StartDate *time.Time `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date;type:date" json:"end_date"`

	PartySize *int     `gorm:"column:party_size" json:"party_size"`
	Budget    *float64 `gorm:"column:budget;type:numeric" json:"budget"`
	Currency  *string  `gorm:"column:currency;type:text" json:"currency"`

	Tags pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`

	// Per-bucket budget breakdown from itinerary generation
	// (total/transport/accommodation/dining/activities/contingency).
	BudgetBreakdown datatypes.JSON `gorm:"column:budget_breakdown;type:jsonb" json:"budget_breakdown"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Plan) TableName() string { return "plans" }

// PlanSegment is one activity inside a plan day. SortOrder fixes the order
// within the day.
type PlanSegment struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlanID string `gorm:"column:plan_id;type:uuid;index" json:"plan_id"`

	Day         int     `gorm:"column:day" json:"day"`
	Summary     *string `gorm:"column:summary;type:text" json:"summary"`
	Title       string  `gorm:"column:title;type:text" json:"title"`
	Description *string `gorm:"column:description;type:text" json:"description"`
	City        *string `gorm:"column:city;type:text" json:"city"`

	Budget    *float64 `gorm:"column:budget;type:numeric" json:"budget"`
	StartTime *string  `gorm:"column:start_time;type:text" json:"start_time"`
	EndTime   *string  `gorm:"column:end_time;type:text" json:"end_time"`
	POIID     *string  `gorm:"column:poi_id;type:text" json:"poi_id"`

	SortOrder int `gorm:"column:sort_order" json:"sort_order"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (PlanSegment) TableName() string { return "plan_segments" }

// PlanDay groups a plan's segments for detail responses.
type PlanDay struct {
	Day        int           `json:"day"`
	Summary    *string       `json:"summary"`
	Activities []PlanSegment `json:"activities"`
}

type PlanDetail struct {
	Plan                Plan      `json:"plan"`
	Days                []PlanDay `json:"days"`
	TotalActivityBudget *float64  `json:"total_activity_budget"`
}
