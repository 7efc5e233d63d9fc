package models

import "time"

// Expense sources.
const (
	ExpenseSourceManual = "manual"
	ExpenseSourceVoice  = "voice"
)

type Expense struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlanID string `gorm:"column:plan_id;type:uuid;index" json:"plan_id"`

	Amount   float64 `gorm:"column:amount;type:numeric" json:"amount"`
	Currency *string `gorm:"column:currency;type:text" json:"currency"`
	Category *string `gorm:"column:category;type:text" json:"category"`
	Method   *string `gorm:"column:method;type:text" json:"method"`
	Source   *string `gorm:"column:source;type:text" json:"source"`
	Notes    *string `gorm:"column:notes;type:text" json:"notes"`

	Timestamp time.Time `gorm:"column:timestamp;type:timestamptz" json:"timestamp"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Expense) TableName() string { return "expenses" }

// CategoryTotal is one row of the per-category expense summary.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}
