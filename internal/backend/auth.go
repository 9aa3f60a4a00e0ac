package backend

import (
	"context"

	"github.com/mcoot/gamerhub/internal/model"
)

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its bearer token
func (c *Client) Register(ctx context.Context, input model.RegisterInput) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, "/auth/register", input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the token belongs to
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAccount changes the name and/or password of the token's user
func (c *Client) UpdateAccount(ctx context.Context, update model.AccountUpdate) (*model.User, error) {
	var user model.User
	if err := c.Put(ctx, "/auth/user", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
