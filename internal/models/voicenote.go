package models

import "time"

// VoiceNote records the stored audio behind a voice-captured expense.
type VoiceNote struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlanID string `gorm:"column:plan_id;type:uuid;index" json:"plan_id"`

	StoragePath     string  `gorm:"column:storage_path;type:text" json:"storage_path"`
	Transcript      *string `gorm:"column:transcript;type:text" json:"transcript"`
	DurationSeconds *int    `gorm:"column:duration_seconds" json:"duration_seconds"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (VoiceNote) TableName() string { return "voice_notes" }
