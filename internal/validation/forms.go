package validation

import (
	"strings"

	"github.com/mcoot/gamerhub/internal/model"
)

// LoginForm is the login screen input
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the registration screen input
type RegisterForm struct {
	Name     string `form:"name" validate:"required,min=2,max=50"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6,letterdigit"`
	Confirm  string `form:"confirm_password" validate:"eqfield=Password"`
}

// Input converts the form to the API payload
func (f RegisterForm) Input() model.RegisterInput {
	return model.RegisterInput{Name: strings.TrimSpace(f.Name), Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// ProfileForm is the profile create and edit input
type ProfileForm struct {
	Name        string `form:"name" validate:"required,min=1,max=20"`
	Restriction string `form:"allowed_rating" validate:"required,oneof=KIDS ADULTS"`
}

// Input converts the form to the API payload
func (f ProfileForm) Input() model.ProfileInput {
	return model.ProfileInput{
		Name:        strings.TrimSpace(f.Name),
		Restriction: model.Restriction(strings.ToUpper(strings.TrimSpace(f.Restriction))),
	}
}

// SettingsForm is the account settings input. Blank fields are left unchanged.
type SettingsForm struct {
	Name            string `form:"name" validate:"omitempty,min=2,max=50"`
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password" validate:"omitempty,min=6"`
	Confirm         string `form:"confirm_password" validate:"eqfield=NewPassword"`
}

// Update converts the form to the API payload
func (f SettingsForm) Update() model.AccountUpdate {
	return model.AccountUpdate{
		Name:            strings.TrimSpace(f.Name),
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
	}
}

// UserForm is the admin user create and edit input. Password is only
// required when creating.
type UserForm struct {
	Name     string `form:"name" validate:"required,min=2,max=50"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"omitempty,min=6"`
	Role     string `form:"role" validate:"required,oneof=user admin owner"`
}

// Input converts the form to the API payload
func (f UserForm) Input() model.UserInput {
	return model.UserInput{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     model.Role(f.Role),
	}
}

// GameForm is the admin game create and edit input
type GameForm struct {
	Name            string   `form:"name" validate:"required"`
	Description     string   `form:"description" validate:"required,min=10"`
	Platforms       []string `form:"platforms" validate:"required,min=1,dive,required"`
	Genres          []string `form:"genres" validate:"required,min=1,dive,required"`
	ESRBRating      string   `form:"esrb_rating" validate:"required,oneof=E E10+ T M"`
	Released        string   `form:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Rating          float64  `form:"rating" validate:"min=0,max=5"`
	Metacritic      *int     `form:"metacritic" validate:"omitempty,min=0,max=100"`
	BackgroundImage string   `form:"background_image" validate:"omitempty,url"`
	Website         string   `form:"website" validate:"omitempty,url"`
}

// Input converts the form to the API payload
func (f GameForm) Input() model.GameInput {
	return model.GameInput{
		Name:            strings.TrimSpace(f.Name),
		Description:     strings.TrimSpace(f.Description),
		Released:        f.Released,
		Rating:          f.Rating,
		AgeRating:       f.ESRBRating,
		Genres:          f.Genres,
		Platforms:       f.Platforms,
		BackgroundImage: f.BackgroundImage,
		Metacritic:      f.Metacritic,
		Website:         f.Website,
	}
}

// ImportForm is the admin popular-games import input
type ImportForm struct {
	Count int `form:"count" validate:"min=1,max=1000"`
}

// SplitList splits comma separated input into trimmed, non-empty values
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
