package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/formationhq/formation/pkg/eventbus"
	"github.com/formationhq/formation/pkg/events"
	"github.com/formationhq/formation/pkg/metrics"
	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/otelhelper"
	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/registry"
)

// ErrWorkflowAlreadyFinished is returned when Run is invoked on a workflow in
// a terminal status. Re-running finished workflows is rejected, never
// silently repeated.
var ErrWorkflowAlreadyFinished = errors.New("workflow already finished")

// Orchestrator sequences the execution of all steps for one workflow: the
// sequential phase strictly in registry order, then the parallel group, then
// finalization.
type Orchestrator struct {
	persistence persistence.Persistence
	executor    *Executor
	eventBus    eventbus.EventBus
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator. Metrics and tracer may be nil.
func NewOrchestrator(
	store persistence.Persistence,
	executor *Executor,
	eventBus eventbus.EventBus,
	collectors *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Orchestrator {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("formation")
	}

	return &Orchestrator{
		persistence: store,
		executor:    executor,
		eventBus:    eventBus,
		metrics:     collectors,
		tracer:      tracer,
		logger:      logger,
	}
}

// Run drives the workflow to a terminal status. A workflow interrupted by a
// crash may be run again: completed steps are skipped and execution resumes
// at the first non-terminal step.
func (o *Orchestrator) Run(ctx context.Context, workflowID string) error {
	workflow, err := o.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if workflow.Status.IsTerminal() {
		return fmt.Errorf("%w: workflow %s is %s", ErrWorkflowAlreadyFinished, workflowID, workflow.Status)
	}

	logger := o.logger.With("workflow_id", workflowID, "client_id", workflow.ClientID)

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ClientIDKey, workflow.ClientID),
	)
	defer span.End()

	startedAt := time.Now().UTC()

	if workflow.Status == models.WorkflowStatusPending {
		err = o.persistence.UpdateWorkflowStatus(ctx, workflowID, models.WorkflowStatusInProgress, startedAt)
		if err != nil {
			return fmt.Errorf("failed to start workflow %s: %w", workflowID, err)
		}

		o.publish(ctx, workflowID, events.WorkflowStarted{
			BaseEvent: events.NewBaseEvent(events.WorkflowStartedEvent, workflowID),
			ClientID:  workflow.ClientID,
		})

		if o.metrics != nil {
			o.metrics.WorkflowsStarted.Inc()
		}

		logger.Info("Workflow started", "total_estimated_minutes", workflow.TotalEstimatedMinutes)
	} else {
		// in_progress after a crash: resume from persisted step state.
		if workflow.StartedAt != nil {
			startedAt = *workflow.StartedAt
		}

		logger.Info("Resuming interrupted workflow")
	}

	err = o.runSequentialPhase(ctx, workflowID)
	if err != nil {
		return o.failWorkflow(ctx, workflow, err, span)
	}

	err = o.runParallelGroup(ctx, workflowID)
	if err != nil {
		return o.failWorkflow(ctx, workflow, err, span)
	}

	err = o.executor.ExecuteStep(ctx, workflowID, registry.FinalizationStepID)
	if err != nil {
		return o.failWorkflow(ctx, workflow, err, span)
	}

	return o.completeWorkflow(ctx, workflow, startedAt, logger)
}

// runSequentialPhase executes the ordered steps strictly one at a time,
// halting on the first failure.
func (o *Orchestrator) runSequentialPhase(ctx context.Context, workflowID string) error {
	for _, stepID := range registry.SequentialStepIDs() {
		err := o.executor.ExecuteStep(ctx, workflowID, stepID)
		if err != nil {
			return err
		}
	}

	return nil
}

// runParallelGroup dispatches every group step at once and waits for all of
// them to settle. Siblings of a failed step are not cancelled: each runs to
// its own terminal state so the persisted audit trail never contains a step
// abandoned mid-flight. The join returns the first failure in declared order.
func (o *Orchestrator) runParallelGroup(ctx context.Context, workflowID string) error {
	stepIDs := registry.ParallelStepIDs()
	results := make([]error, len(stepIDs))

	var wg sync.WaitGroup

	for i, stepID := range stepIDs {
		wg.Add(1)

		go func(index int, id string) {
			defer wg.Done()

			results[index] = o.executor.ExecuteStep(ctx, workflowID, id)
		}(i, stepID)
	}

	wg.Wait()

	for _, err := range results {
		if err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) completeWorkflow(ctx context.Context, workflow *models.Workflow, startedAt time.Time, logger *slog.Logger) error {
	completedAt := time.Now().UTC()
	actualMinutes := completedAt.Sub(startedAt).Minutes()

	err := o.persistence.FinalizeWorkflow(ctx, workflow.ID, actualMinutes, completedAt)
	if err != nil {
		return fmt.Errorf("failed to finalize workflow %s: %w", workflow.ID, err)
	}

	if o.metrics != nil {
		o.metrics.WorkflowsCompleted.Inc()
	}

	completed, err := o.persistence.WorkflowByID(ctx, workflow.ID)
	if err != nil {
		// The workflow is already completed; notification enrichment is best
		// effort from here.
		logger.Error("Failed to reload completed workflow", "error", err)
		completed = workflow
	}

	o.publish(ctx, workflow.ID, events.WorkflowCompleted{
		BaseEvent:     events.NewBaseEvent(events.WorkflowCompletedEvent, workflow.ID),
		ClientID:      completed.ClientID,
		CompanyName:   completed.Request.CompanyName,
		OwnerEmail:    completed.Request.OwnerEmail,
		ActualMinutes: actualMinutes,
		Documents:     completed.Documents,
		EIN:           completed.EIN,
		BankAccount:   completed.BankAccount,
	})

	logger.Info("Workflow completed", "actual_minutes", actualMinutes)

	return nil
}

// failWorkflow records the terminal failed status and reports which step sank
// the workflow. Steps already dispatched have settled by the time this runs;
// no further step starts afterwards.
func (o *Orchestrator) failWorkflow(ctx context.Context, workflow *models.Workflow, cause error, span trace.Span) error {
	otelhelper.SetError(span, cause)

	failedStepID := ""

	var stepFailure *StepFailure
	if errors.As(cause, &stepFailure) {
		failedStepID = stepFailure.StepID
	}

	err := o.persistence.UpdateWorkflowStatus(ctx, workflow.ID, models.WorkflowStatusFailed, time.Now().UTC())
	if err != nil {
		o.logger.Error("Failed to persist workflow failure",
			"workflow_id", workflow.ID, "error", err)
	}

	if o.metrics != nil {
		o.metrics.WorkflowsFailed.Inc()
	}

	o.publish(ctx, workflow.ID, events.WorkflowFailed{
		BaseEvent:    events.NewBaseEvent(events.WorkflowFailedEvent, workflow.ID),
		ClientID:     workflow.ClientID,
		FailedStepID: failedStepID,
		Error:        cause.Error(),
	})

	o.logger.Error("Workflow failed",
		"workflow_id", workflow.ID, "failed_step_id", failedStepID, "error", cause)

	return cause
}

func (o *Orchestrator) publish(ctx context.Context, key string, event eventbus.Event) {
	if o.eventBus == nil {
		return
	}

	err := o.eventBus.Publish(ctx, key, event)
	if err != nil {
		o.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
