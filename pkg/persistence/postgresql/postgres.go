// Package postgresql provides PostgreSQL persistence for formation workflows.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
	}, nil
}

// CreateWorkflow inserts the workflow and all of its step records.
func (p *Persistence) CreateWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return p.workflowRepo.Create(ctx, workflow)
}

// WorkflowByID returns the full workflow including its steps.
func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

// WorkflowsByClient returns every workflow for a client, newest first.
func (p *Persistence) WorkflowsByClient(ctx context.Context, clientID string) ([]*models.Workflow, error) {
	return p.workflowRepo.GetByClient(ctx, clientID)
}

// UpdateWorkflowStatus records a workflow status change with timestamps.
func (p *Persistence) UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, at time.Time) error {
	return p.workflowRepo.UpdateStatus(ctx, id, status, at)
}

// FinalizeWorkflow marks the workflow completed with its total duration.
func (p *Persistence) FinalizeWorkflow(ctx context.Context, id string, actualMinutes float64, at time.Time) error {
	return p.workflowRepo.Finalize(ctx, id, actualMinutes, at)
}

// UpdateStep writes the current state of one step row.
func (p *Persistence) UpdateStep(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	return p.workflowRepo.UpdateStep(ctx, workflowID, step)
}

// UpdateResults applies a partial step-output patch to the workflow row.
func (p *Persistence) UpdateResults(ctx context.Context, workflowID string, patch persistence.ResultsPatch) error {
	return p.workflowRepo.UpdateResults(ctx, workflowID, patch)
}

// HealthCheck verifies database connectivity.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
