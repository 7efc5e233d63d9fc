package models

import (
	"time"

	"gorm.io/datatypes"
)

type Profile struct {
	ID    string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email string `gorm:"column:email;type:text" json:"email"`

	DisplayName           *string `gorm:"column:display_name;type:text" json:"display_name"`
	DefaultCurrency       *string `gorm:"column:default_currency;type:text" json:"default_currency"`
	DefaultCompanionCount *int    `gorm:"column:default_companion_count" json:"default_companion_count"`

	// JSONB, structure left to the client.
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
