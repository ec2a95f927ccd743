package cmd

import (
	"fmt"

	"github.com/formationhq/formation/pkg/nameregistry"
)

// NewNameRegistry creates the state name registry. With a Redis URL the
// registry checks the shared taken-name sets; without one it falls back to a
// small static list so development setups still exercise name conflicts.
func NewNameRegistry(redisURL string) nameregistry.Registry {
	if redisURL == "" {
		return nameregistry.NewStatic(
			"Acme LLC",
			"Globex Corporation LLC",
			"Initech LLC",
		)
	}

	registry, err := nameregistry.NewRedis(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to create Redis name registry: %w", err))
	}

	return registry
}
