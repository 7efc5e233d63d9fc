package services

import (
	"context"
	"strings"

	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/providers/llm"
	"github.com/lvji-app/lvji/internal/utils"
)

type ItineraryService interface {
	Generate(ctx context.Context, prompt string) (*models.Itinerary, error)
}

type itineraryService struct {
	llm llm.Provider
}

func NewItineraryService(provider llm.Provider) ItineraryService {
	return &itineraryService{llm: provider}
}

func (s *itineraryService) Generate(ctx context.Context, prompt string) (*models.Itinerary, error) {
	const op = "ItineraryService.Generate"

	if strings.TrimSpace(prompt) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "prompt is required", nil)
	}
	return s.llm.GenerateItinerary(ctx, prompt)
}
