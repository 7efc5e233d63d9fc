package services

import (
	"context"
	"errors"
	"time"

	"github.com/lvji-app/lvji/internal/models"
	pgrepo "github.com/lvji-app/lvji/internal/repositories/postgres"
	"github.com/lvji-app/lvji/internal/utils"
)

type ProfileService interface {
	GetMe(ctx context.Context, userID, email string) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
}

type profileService struct {
	profiles pgrepo.ProfileRepository
}

func NewProfileService(profiles pgrepo.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

// GetMe returns the caller's profile, creating an empty one on first access.
func (s *profileService) GetMe(ctx context.Context, userID, email string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	now := time.Now().UTC()
	p = &models.Profile{
		ID:        userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, p *models.Profile) error {
	const op = "ProfileService.Update"

	if p == nil || p.ID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "profile id is required", nil)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return nil
}
