package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes          int        `json:"notes"`
	Archived       int        `json:"archived"`
	LastID         int        `json:"last_id"`
	IDPolicy       IDPolicy   `json:"id_policy"`
	ReadOnly       bool       `json:"read_only"`
	RepositoryType string     `json:"repository_type"`
	Repository     any        `json:"repository,omitempty"`
	LoadError      string     `json:"load_error,omitempty"`
	LastLoad       *time.Time `json:"last_load,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := StoreState{
		Notes:          len(s.notes),
		LastID:         s.lastID,
		IDPolicy:       s.policy,
		ReadOnly:       s.readOnly,
		RepositoryType: "repository",
	}
	for _, n := range s.notes {
		if n.IsArchived {
			state.Archived++
		}
	}

	// Try to get component type if repository implements introspection.Component
	if comp, ok := s.repo.(introspection.Component); ok {
		state.RepositoryType = comp.ComponentType()
	}
	if in, ok := s.repo.(introspection.Introspectable); ok {
		state.Repository = in.State()
	}
	if s.loadErr != nil {
		state.LoadError = s.loadErr.Error()
	}
	if !s.lastLoad.IsZero() {
		t := s.lastLoad
		state.LastLoad = &t
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
