package storage

import (
	"context"
	"errors"

	"github.com/mcoot/gamerhub/internal/model"
)

// ErrNotFound is returned when no value is persisted for a scope
var ErrNotFound = errors.New("no persisted value")

// Scope identifies one client's persisted state: a browser session for the
// web client, a fixed name for the CLI
type Scope string

// Storage defines the interface for persisted client state
type Storage interface {
	// Token operations
	SaveToken(ctx context.Context, scope Scope, token string) error
	GetToken(ctx context.Context, scope Scope) (string, error)
	DeleteToken(ctx context.Context, scope Scope) error

	// Active profile operations
	SaveActiveProfile(ctx context.Context, scope Scope, profile *model.Profile) error
	GetActiveProfile(ctx context.Context, scope Scope) (*model.Profile, error)
	DeleteActiveProfile(ctx context.Context, scope Scope) error

	// Clear removes everything persisted for the scope
	Clear(ctx context.Context, scope Scope) error
}
