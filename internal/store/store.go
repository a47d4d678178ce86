// =============================================================================
// Payroll Bank Splitter - Artifact Store
// =============================================================================
//
// This module holds every file generated during one processing session.
//
// STAGES AND INVALIDATION:
//
//   split (1)  ->  summary (2)
//              ->  convert (3)  ->  text deletion
//
//   Replacing a stage's artifacts also discards every later stage, so a new
//   split always starts from a clean session. Replacing summary or convert
//   leaves the split files alone.
//
// OWNERSHIP:
//   Artifact content is never modified once stored. The store is not safe for
//   concurrent use; callers that share a store serialise access themselves.
//
// =============================================================================

package store

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// Store is a session-scoped mapping from file name to artifact.
type Store struct {
	sessionID string
	artifacts map[string]types.Artifact
	order     []string
}

// New creates an empty store with a fresh session id.
func New() *Store {
	return &Store{
		sessionID: uuid.New().String(),
		artifacts: make(map[string]types.Artifact),
	}
}

// SessionID identifies the session in logs and bundle names.
func (s *Store) SessionID() string {
	return s.sessionID
}

// =============================================================================
// MUTATION
// =============================================================================

// ReplaceStage drops the stage and every later stage, then stores the new
// artifacts. Each artifact's Stage is set to stage.
func (s *Store) ReplaceStage(stage types.Stage, artifacts []types.Artifact) {
	s.removeWhere(func(a types.Artifact) bool {
		return invalidatedBy(stage, a.Stage)
	})

	for _, a := range artifacts {
		a.Stage = stage
		s.Append(a)
	}
}

// Append adds an artifact. An artifact with the same name is replaced and
// moves to the end of the creation order.
func (s *Store) Append(a types.Artifact) {
	if _, exists := s.artifacts[a.Name]; exists {
		s.removeWhere(func(existing types.Artifact) bool { return existing.Name == a.Name })
	}
	s.artifacts[a.Name] = a
	s.order = append(s.order, a.Name)
}

// DeleteText removes every .txt artifact and returns how many were removed.
// A second call returns 0.
func (s *Store) DeleteText() int {
	return s.DeleteWhere(func(a types.Artifact) bool {
		return a.Ext() == ".txt"
	})
}

// DeleteWhere removes every artifact matching the predicate.
func (s *Store) DeleteWhere(match func(types.Artifact) bool) int {
	return s.removeWhere(match)
}

// removeWhere deletes matching artifacts and keeps the order slice in sync.
func (s *Store) removeWhere(match func(types.Artifact) bool) int {
	removed := 0
	kept := s.order[:0]
	for _, name := range s.order {
		a := s.artifacts[name]
		if match(a) {
			delete(s.artifacts, name)
			removed++
			continue
		}
		kept = append(kept, name)
	}
	s.order = kept
	return removed
}

// invalidatedBy reports whether replacing stage discards artifacts of other.
func invalidatedBy(stage, other types.Stage) bool {
	if stage == types.StageSplit {
		return true
	}
	return other == stage
}

// =============================================================================
// ENUMERATION
// =============================================================================

// Get returns an artifact by name.
func (s *Store) Get(name string) (types.Artifact, bool) {
	a, ok := s.artifacts[name]
	return a, ok
}

// List returns the artifacts of a stage in creation order.
// The zero Stage lists every artifact.
func (s *Store) List(stage types.Stage) []types.Artifact {
	out := make([]types.Artifact, 0, len(s.order))
	for _, name := range s.order {
		a := s.artifacts[name]
		if stage == 0 || a.Stage == stage {
			out = append(out, a)
		}
	}
	return out
}

// Names returns the sorted names of the artifacts of a stage.
func (s *Store) Names(stage types.Stage) []string {
	list := s.List(stage)
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored artifacts.
func (s *Store) Len() int {
	return len(s.order)
}
