package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/persistence/file"
	"github.com/formationhq/formation/pkg/persistence/postgresql"
)

// NewPersistence creates a persistence backend from a database URL. URLs with
// a postgres:// or postgresql:// scheme get the PostgreSQL backend; anything
// else is treated as a directory for the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return store
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "file"
	}
}
