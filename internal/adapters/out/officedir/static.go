// Package officedir resolves office identities from a fixed list.
package officedir

import (
	"context"

	"consolidation/internal/core/domain/model/kernel"
)

// Static knows the offices it was built with. An empty directory accepts
// every well-formed id, for deployments without an office registry.
type Static struct {
	offices map[kernel.UUID]struct{}
}

func NewStatic(ids []kernel.UUID) *Static {
	offices := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		offices[id] = struct{}{}
	}
	return &Static{offices: offices}
}

func (s *Static) Exists(_ context.Context, officeID kernel.UUID) (bool, error) {
	if err := officeID.Validate(); err != nil {
		return false, nil
	}
	if len(s.offices) == 0 {
		return true, nil
	}
	_, ok := s.offices[officeID]
	return ok, nil
}
