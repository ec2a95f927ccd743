// Package nameregistry provides company-name availability lookups against a
// state registry.
package nameregistry

import (
	"context"
	"strings"
)

// Registry answers whether a company name may be registered in a state.
type Registry interface {
	Available(ctx context.Context, state, companyName string) (bool, error)
}

// Normalize reduces a company name to its comparable form: lowercased,
// whitespace collapsed, entity suffix stripped.
func Normalize(companyName string) string {
	name := strings.ToLower(strings.TrimSpace(companyName))
	name = strings.Join(strings.Fields(name), " ")

	for _, suffix := range []string{" llc", " l.l.c.", " limited liability company"} {
		name = strings.TrimSuffix(name, suffix)
	}

	return strings.TrimSpace(name)
}

// Static is an in-memory registry seeded with taken names, for development
// and tests.
type Static struct {
	taken map[string]struct{}
}

// NewStatic creates a static registry with the given taken names.
func NewStatic(takenNames ...string) *Static {
	taken := make(map[string]struct{}, len(takenNames))
	for _, name := range takenNames {
		taken[Normalize(name)] = struct{}{}
	}

	return &Static{taken: taken}
}

// Available reports whether the name is not already taken. State is ignored:
// the static registry holds one flat namespace.
func (s *Static) Available(_ context.Context, _ string, companyName string) (bool, error) {
	_, exists := s.taken[Normalize(companyName)]

	return !exists, nil
}
