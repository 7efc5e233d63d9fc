package llm

import (
	"context"

	"github.com/lvji-app/lvji/internal/models"
)

// Provider turns a free-text prompt into a validated structured itinerary.
type Provider interface {
	GenerateItinerary(ctx context.Context, prompt string) (*models.Itinerary, error)
}
