package backend

import (
	"context"

	"github.com/mcoot/gamerhub/internal/model"
)

// ListUsers returns every account (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an account (admin only)
func (c *Client) CreateUser(ctx context.Context, input model.UserInput) (*model.User, error) {
	var user model.User
	if err := c.Post(ctx, "/users", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an account (admin only)
func (c *Client) UpdateUser(ctx context.Context, id string, input model.UserInput) (*model.User, error) {
	var user model.User
	if err := c.Put(ctx, pathf("/users/%s", id), input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Delete(ctx, pathf("/users/%s", id))
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

// UpdateUserRole changes an account's role (admin only)
func (c *Client) UpdateUserRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	var user model.User
	if err := c.Put(ctx, pathf("/users/%s/role", id), roleRequest{Role: role}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
