package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/validation"
)

// Service manages the profiles of the logged in user
type Service struct {
	api       backend.ClientProvider
	active    *ActiveStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates a profile service
func NewService(api backend.ClientProvider, active *ActiveStore, v *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		api:       api,
		active:    active,
		validator: v,
		logger:    logger,
	}
}

// List returns the user's profiles
func (s *Service) List(ctx context.Context) ([]model.Profile, error) {
	return s.api.Client().ListProfiles(ctx)
}

// ListForUser returns another user's profiles (admin only)
func (s *Service) ListForUser(ctx context.Context, userID string) ([]model.Profile, error) {
	return s.api.Client().ListUserProfiles(ctx, userID)
}

// Get returns one profile
func (s *Service) Get(ctx context.Context, id string) (*model.Profile, error) {
	return s.api.Client().GetProfile(ctx, id)
}

// Create validates and creates a profile
func (s *Service) Create(ctx context.Context, form validation.ProfileForm) (*model.Profile, error) {
	if err := s.validate(ctx, form, ""); err != nil {
		return nil, err
	}
	p, err := s.api.Client().CreateProfile(ctx, form.Input())
	if err != nil {
		s.logger.Warn("failed to create profile", slog.String("error", err.Error()))
		return nil, err
	}
	return p, nil
}

// Update validates and updates a profile. The active profile snapshot is
// refreshed when it is the one being edited.
func (s *Service) Update(ctx context.Context, id string, form validation.ProfileForm) (*model.Profile, error) {
	if err := s.validate(ctx, form, id); err != nil {
		return nil, err
	}
	p, err := s.api.Client().UpdateProfile(ctx, id, form.Input())
	if err != nil {
		s.logger.Warn("failed to update profile", slog.String("profile_id", id), slog.String("error", err.Error()))
		return nil, err
	}

	if active := s.active.Active(); active != nil && active.ID.String() == id {
		if err := s.active.Select(ctx, *p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Delete removes a profile, clearing it if it was active
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.Client().DeleteProfile(ctx, id); err != nil {
		s.logger.Warn("failed to delete profile", slog.String("profile_id", id), slog.String("error", err.Error()))
		return err
	}

	if active := s.active.Active(); active != nil && active.ID.String() == id {
		return s.active.Clear(ctx)
	}
	return nil
}

// Select fetches a profile and makes it active
func (s *Service) Select(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.api.Client().GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.active.Select(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// validate checks the form and that no other profile of the user has the
// same name, ignoring case
func (s *Service) validate(ctx context.Context, form validation.ProfileForm, selfID string) error {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Struct(form); err != nil {
		return err
	}

	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID.String() != selfID && strings.EqualFold(p.Name, form.Name) {
			return validation.FieldErrors{"name": model.ErrDuplicateProfileName.Error()}
		}
	}
	return nil
}
