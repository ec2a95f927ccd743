package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/formationhq/formation/pkg/eventbus"
	"github.com/formationhq/formation/pkg/events"
	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/registry"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Formation is the caller-facing service for creating and querying formation
// workflows. Deep payload validation is deliberately not performed here: a
// malformed request still becomes a workflow, whose validation step fails and
// leaves the rejection on the audit trail.
type Formation struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
}

// NewFormation creates a new formation service.
func NewFormation(store persistence.Persistence, eventBus eventbus.EventBus) *Formation {
	return &Formation{
		persistence: store,
		eventBus:    eventBus,
	}
}

// CreateFormationInput carries the identifiers and payload for one formation
// attempt.
type CreateFormationInput struct {
	ClientID string
	PlanID   string
	Request  models.FormationRequest
}

// Create persists a new pending workflow with the full step catalog and
// publishes workflow.created so a worker picks it up. Orchestration is
// asynchronous from the caller's perspective.
func (f *Formation) Create(ctx context.Context, input CreateFormationInput) (*models.Workflow, error) {
	if input.ClientID == "" {
		return nil, ErrEmptyClientID
	}

	if input.PlanID == "" {
		return nil, ErrEmptyPlanID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workflow ID: %w", err)
	}

	workflow := &models.Workflow{
		ID:                    id.String(),
		ClientID:              input.ClientID,
		PlanID:                input.PlanID,
		Status:                models.WorkflowStatusPending,
		Steps:                 registry.NewSteps(),
		TotalEstimatedMinutes: registry.TotalEstimatedMinutes(),
		Request:               input.Request,
	}

	err = f.persistence.CreateWorkflow(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	event := events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID),
		ClientID:  workflow.ClientID,
		PlanID:    workflow.PlanID,
	}

	err = f.eventBus.Publish(ctx, workflow.ID, event)
	if err != nil {
		// Without the event no worker would ever run the workflow.
		return nil, fmt.Errorf("failed to publish workflow.created for %s: %w", workflow.ID, err)
	}

	return workflow, nil
}

// FetchByID returns the full workflow including its steps.
func (f *Formation) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := f.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// ListByClient returns every workflow for a client, newest first.
func (f *Formation) ListByClient(ctx context.Context, clientID string) ([]*models.Workflow, error) {
	if clientID == "" {
		return nil, ErrEmptyClientID
	}

	return f.persistence.WorkflowsByClient(ctx, clientID)
}

// HealthCheck checks the health of the persistence layer.
func (f *Formation) HealthCheck(ctx context.Context) (string, bool) {
	if f.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := f.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
