package redis

import (
	"fmt"

	"github.com/mcoot/gamerhub/internal/storage"
)

// Key prefix for all client state
const keyPrefix = "gamerhub"

// tokenKey returns the Redis key for a scope's bearer token
func tokenKey(scope storage.Scope) string {
	return fmt.Sprintf("%s:token:%s", keyPrefix, scope)
}

// activeProfileKey returns the Redis key for a scope's active profile snapshot
func activeProfileKey(scope storage.Scope) string {
	return fmt.Sprintf("%s:active_profile:%s", keyPrefix, scope)
}
