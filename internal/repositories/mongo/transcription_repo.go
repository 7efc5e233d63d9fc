package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TranscriptionRepository interface {
	Create(ctx context.Context, t *models.Transcription) error
	GetByTranscriptionID(ctx context.Context, transcriptionID string) (*models.Transcription, error)
	Complete(ctx context.Context, transcriptionID, transcript string, framesSent int, durationMS int64) error
	Fail(ctx context.Context, transcriptionID, failureCode string, durationMS int64) error
	ListByPlan(ctx context.Context, planID string, limit int) ([]models.Transcription, error)
}

type transcriptionRepo struct {
	col *mongo.Collection
}

func NewTranscriptionRepo(db *mongo.Database) TranscriptionRepository {
	return &transcriptionRepo{col: db.Collection("transcriptions")}
}

func (r *transcriptionRepo) Create(ctx context.Context, t *models.Transcription) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = models.TranscriptionStreaming
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *transcriptionRepo) GetByTranscriptionID(ctx context.Context, transcriptionID string) (*models.Transcription, error) {
	var t models.Transcription
	err := r.col.FindOne(ctx, bson.M{"transcription_id": transcriptionID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &t, err
}

func (r *transcriptionRepo) Complete(ctx context.Context, transcriptionID, transcript string, framesSent int, durationMS int64) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"transcription_id": transcriptionID},
		bson.M{"$set": bson.M{
			"status":       models.TranscriptionDone,
			"transcript":   transcript,
			"frames_sent":  framesSent,
			"duration_ms":  durationMS,
			"completed_at": now,
		}},
	)
	return err
}

func (r *transcriptionRepo) Fail(ctx context.Context, transcriptionID, failureCode string, durationMS int64) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"transcription_id": transcriptionID},
		bson.M{"$set": bson.M{
			"status":       models.TranscriptionFailed,
			"failure_code": failureCode,
			"duration_ms":  durationMS,
			"completed_at": now,
		}},
	)
	return err
}

func (r *transcriptionRepo) ListByPlan(ctx context.Context, planID string, limit int) ([]models.Transcription, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"plan_id": planID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Transcription
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
