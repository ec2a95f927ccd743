// Package persistence provides the data storage abstraction layer for
// formation workflows.
package persistence

import (
	"context"
	"time"

	"github.com/formationhq/formation/pkg/models"
)

// ResultsPatch carries step outputs destined for the workflow record. Only
// non-nil fields are written, so two parallel steps finishing near
// simultaneously never overwrite each other's results.
type ResultsPatch struct {
	Documents          []string
	FilingNumber       *string
	EIN                *string
	BankAccount        *string
	ComplianceSchedule []models.ComplianceReminder
}

// Empty reports whether the patch would write nothing.
func (p ResultsPatch) Empty() bool {
	return p.Documents == nil &&
		p.FilingNumber == nil &&
		p.EIN == nil &&
		p.BankAccount == nil &&
		p.ComplianceSchedule == nil
}

// Persistence is the durable store for workflows and their steps. Storage
// errors propagate as fatal to the calling step or orchestrator; there is no
// retry at this layer.
type Persistence interface {
	// CreateWorkflow inserts the workflow and all of its step records.
	CreateWorkflow(ctx context.Context, workflow *models.Workflow) error

	// WorkflowByID returns the full workflow including its steps, or
	// ErrWorkflowNotFound.
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)

	// WorkflowsByClient returns every workflow for a client, newest first.
	WorkflowsByClient(ctx context.Context, clientID string) ([]*models.Workflow, error)

	// UpdateWorkflowStatus records a workflow status change. The adapter
	// stamps started_at when the status becomes in_progress and completed_at
	// when it becomes terminal.
	UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, at time.Time) error

	// FinalizeWorkflow marks the workflow completed with its measured total
	// duration.
	FinalizeWorkflow(ctx context.Context, id string, actualMinutes float64, at time.Time) error

	// UpdateStep writes the current state of one step. Each step is stored as
	// its own record, so concurrent updates from the parallel group touch
	// disjoint rows.
	UpdateStep(ctx context.Context, workflowID string, step *models.WorkflowStep) error

	// UpdateResults applies a partial step-output patch to the workflow.
	UpdateResults(ctx context.Context, workflowID string, patch ResultsPatch) error

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
