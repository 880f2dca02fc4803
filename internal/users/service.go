package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/crumbandco/cakeshop-backend/pkg/db/models"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/lib/pq"
)

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Phone            *string    `json:"phone,omitempty"`
	DefaultAddressID *uuid.UUID `json:"default_address_id,omitempty"`
	FavoriteFlavors  []string   `json:"favorite_flavors"`
}

// Service exposes account and profile reads for authenticated customers.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
}

type service struct {
	repo *Repository
}

// NewService wires the users service.
func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return FromModel(user), nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return ProfileFromModel(profile), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	profile, err := s.repo.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		profile = &models.Profile{UserID: userID}
	}

	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			profile.Phone = nil
		} else {
			profile.Phone = &phone
		}
	}
	profile.DefaultAddressID = input.DefaultAddressID

	flavors := make([]string, 0, len(input.FavoriteFlavors))
	for _, flavor := range input.FavoriteFlavors {
		if trimmed := strings.TrimSpace(flavor); trimmed != "" {
			flavors = append(flavors, trimmed)
		}
	}
	profile.FavoriteFlavors = pq.StringArray(flavors)

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return ProfileFromModel(profile), nil
}
