package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transcription session statuses.
const (
	TranscriptionStreaming = "streaming"
	TranscriptionDone      = "done"
	TranscriptionFailed    = "failed"
)

// Transcription is the audit document for one streaming recognition session.
type Transcription struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TranscriptionID string             `bson:"transcription_id" json:"transcription_id"` // uuid v4
	UserID          string             `bson:"user_id" json:"user_id"`
	PlanID          string             `bson:"plan_id" json:"plan_id"`

	Status     string `bson:"status" json:"status"`
	AudioBytes int    `bson:"audio_bytes" json:"audio_bytes"`
	FramesSent int    `bson:"frames_sent" json:"frames_sent"`
	Transcript string `bson:"transcript,omitempty" json:"transcript,omitempty"`

	FailureCode string `bson:"failure_code,omitempty" json:"failure_code,omitempty"`
	DurationMS  int64  `bson:"duration_ms" json:"duration_ms"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
