package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/validation"
)

// Users returns every account with its profiles. A user whose profiles cannot
// be fetched is listed without them.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	client := s.api.Client()
	users, err := client.ListUsers(ctx)
	if err != nil {
		s.warn("failed to list users", err)
		return nil, err
	}

	for i := range users {
		profiles, err := client.ListUserProfiles(ctx, users[i].ID.String())
		if err != nil {
			s.warn("failed to list user profiles", err, slog.String("user_id", users[i].ID.String()))
			continue
		}
		users[i].Profiles = profiles
	}
	return users, nil
}

// CreateUser validates and creates an account. A password is required.
func (s *Service) CreateUser(ctx context.Context, form validation.UserForm) (*model.User, error) {
	if err := s.validateUser(form, true); err != nil {
		return nil, err
	}
	u, err := s.api.Client().CreateUser(ctx, form.Input())
	if err != nil {
		s.warn("failed to create user", err)
		return nil, err
	}
	s.logger.Info("user created", slog.String("user_id", u.ID.String()), slog.String("role", string(u.Role)))
	return u, nil
}

// UpdateUser validates and updates an account. A blank password is left
// unchanged.
func (s *Service) UpdateUser(ctx context.Context, id string, form validation.UserForm) (*model.User, error) {
	if err := s.validateUser(form, false); err != nil {
		return nil, err
	}
	u, err := s.api.Client().UpdateUser(ctx, id, form.Input())
	if err != nil {
		s.warn("failed to update user", err, slog.String("user_id", id))
		return nil, err
	}
	return u, nil
}

func (s *Service) validateUser(form validation.UserForm, creating bool) error {
	err := s.validator.Struct(form)
	if !creating || strings.TrimSpace(form.Password) != "" {
		return err
	}

	fe, ok := validation.AsFieldErrors(err)
	if !ok {
		if err != nil {
			return err
		}
		fe = validation.FieldErrors{}
	}
	fe["password"] = "password is required"
	return fe
}

// DeleteUser removes an account and its profiles
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.api.Client().DeleteUser(ctx, id); err != nil {
		s.warn("failed to delete user", err, slog.String("user_id", id))
		return err
	}
	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// ChangeRole sets a user's role
func (s *Service) ChangeRole(ctx context.Context, id, role string) (*model.User, error) {
	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, validation.FieldErrors{"role": "role must be one of user, admin, owner"}
	}
	u, err := s.api.Client().UpdateUserRole(ctx, id, r)
	if err != nil {
		s.warn("failed to change role", err, slog.String("user_id", id))
		return nil, err
	}
	s.logger.Info("role changed", slog.String("user_id", id), slog.String("role", string(r)))
	return u, nil
}

// CreateProfile creates a profile on behalf of userID
func (s *Service) CreateProfile(ctx context.Context, userID string, form validation.ProfileForm) (*model.Profile, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	input := form.Input()
	input.UserID = userID
	p, err := s.api.Client().CreateProfile(ctx, input)
	if err != nil {
		s.warn("failed to create profile", err, slog.String("user_id", userID))
		return nil, err
	}
	return p, nil
}

// DeleteProfile removes any user's profile
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	if err := s.api.Client().DeleteProfile(ctx, id); err != nil {
		s.warn("failed to delete profile", err, slog.String("profile_id", id))
		return err
	}
	return nil
}
