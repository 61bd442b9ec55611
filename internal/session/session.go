// Package session persists which user is logged in.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/notepid/roadwatch/internal/kv"
	"github.com/notepid/roadwatch/internal/user"
)

// KeyCurrentUser holds the logged-in identity.
const KeyCurrentUser = "currentUser"

// Store reads and writes the current session identity.
type Store struct {
	kv kv.Store
}

// NewStore creates a session store over backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// Set records id as the logged-in user.
func (s *Store) Set(ctx context.Context, id user.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Current returns the logged-in identity. ok is false when nobody is logged in.
func (s *Store) Current(ctx context.Context) (user.Identity, bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		return user.Identity{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return user.Identity{}, false, nil
	}
	var id user.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return user.Identity{}, false, fmt.Errorf("decode session: %w", err)
	}
	return id, true, nil
}

// Clear logs the current user out.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
