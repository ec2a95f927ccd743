// Package workflow contains the step executor and the orchestrator that
// drive a formation workflow from pending to a terminal status.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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
	"github.com/formationhq/formation/pkg/steps"
)

// StepFailure marks an error as originating from a specific step, so the
// orchestrator can record which step sank the workflow.
type StepFailure struct {
	StepID string
	Err    error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepFailure) Unwrap() error {
	return e.Err
}

// Executor runs the domain logic for exactly one step and records its
// outcome. Every status transition is persisted immediately, so partial
// progress stays observable even if the process crashes mid-step.
type Executor struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	steps       map[string]steps.Step
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewExecutor creates a step executor. Metrics and tracer may be nil.
func NewExecutor(
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	stepSet map[string]steps.Step,
	collectors *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Executor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("formation")
	}

	return &Executor{
		persistence: store,
		eventBus:    eventBus,
		steps:       stepSet,
		metrics:     collectors,
		tracer:      tracer,
		logger:      logger,
	}
}

// ExecuteStep runs one step of one workflow. A step already completed (from a
// previous, interrupted run) is skipped, a step left in_progress by a crash
// is restarted, and a failed step is an error. Failures are returned as
// *StepFailure.
func (e *Executor) ExecuteStep(ctx context.Context, workflowID, stepID string) error {
	definition, known := registry.Lookup(stepID)
	if !known {
		return fmt.Errorf("step %s is not declared in the registry", stepID)
	}

	implementation, registered := e.steps[stepID]
	if !registered {
		return fmt.Errorf("no implementation registered for step %s", stepID)
	}

	workflow, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	step, found := workflow.StepByID(stepID)
	if !found {
		return persistence.NewStepError("ExecuteStep", workflowID, stepID, persistence.ErrStepNotFound)
	}

	logger := e.logger.With("workflow_id", workflowID, "step_id", stepID)

	if step.Status == models.StepStatusCompleted {
		logger.Info("Step already completed, skipping")

		return nil
	}

	if step.Status.IsTerminal() {
		return &StepFailure{StepID: stepID, Err: errors.New(step.Error)}
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "step."+stepID,
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.StepIDKey, stepID),
		attribute.String(otelhelper.StepNameKey, definition.Name),
	)
	defer span.End()

	startedAt := time.Now().UTC()

	if step.Status == models.StepStatusInProgress {
		// A crash left this step mid-flight. Restart its timing and run it
		// again from the top.
		logger.Info("Step was interrupted, restarting")

		err = step.Restart(startedAt)
	} else {
		err = step.Start(startedAt)
	}

	if err != nil {
		return err
	}

	err = e.persistence.UpdateStep(ctx, workflowID, step)
	if err != nil {
		return fmt.Errorf("failed to persist step start: %w", err)
	}

	e.publish(ctx, workflowID, events.StepStarted{
		BaseEvent: events.NewBaseEvent(events.StepStartedEvent, workflowID),
		StepID:    stepID,
	})

	logger.Info("Executing step", "step_name", definition.Name)

	stepCtx, cancel := context.WithTimeout(ctx, definition.Timeout)
	defer cancel()

	result, execErr := implementation.Execute(stepCtx, steps.ExecutionContext{
		Workflow: workflow,
		Logger:   logger,
	})

	elapsed := time.Since(startedAt)

	if execErr != nil {
		if errors.Is(execErr, context.DeadlineExceeded) {
			execErr = fmt.Errorf("step timed out after %s", definition.Timeout)
		}

		return e.failStep(ctx, workflowID, step, execErr, elapsed, span)
	}

	err = step.Complete(time.Now().UTC(), elapsed)
	if err != nil {
		return err
	}

	err = e.persistence.UpdateStep(ctx, workflowID, step)
	if err != nil {
		return fmt.Errorf("failed to persist step completion: %w", err)
	}

	err = e.persistence.UpdateResults(ctx, workflowID, resultsPatch(result))
	if err != nil {
		return fmt.Errorf("failed to persist step results: %w", err)
	}

	e.observeStep(stepID, string(models.StepStatusCompleted), elapsed)
	e.publish(ctx, workflowID, events.StepCompleted{
		BaseEvent:     events.NewBaseEvent(events.StepCompletedEvent, workflowID),
		StepID:        stepID,
		ActualMinutes: step.ActualMinutes,
	})

	logger.Info("Step completed", "elapsed", elapsed)

	return nil
}

func (e *Executor) failStep(
	ctx context.Context,
	workflowID string,
	step *models.WorkflowStep,
	cause error,
	elapsed time.Duration,
	span trace.Span,
) error {
	otelhelper.SetError(span, cause)

	err := step.Fail(time.Now().UTC(), cause.Error())
	if err != nil {
		return err
	}

	err = e.persistence.UpdateStep(ctx, workflowID, step)
	if err != nil {
		return fmt.Errorf("failed to persist step failure: %w", err)
	}

	e.observeStep(step.ID, string(models.StepStatusFailed), elapsed)
	e.publish(ctx, workflowID, events.StepFailed{
		BaseEvent: events.NewBaseEvent(events.StepFailedEvent, workflowID),
		StepID:    step.ID,
		Error:     cause.Error(),
	})

	e.logger.Error("Step failed", "workflow_id", workflowID, "step_id", step.ID, "error", cause)

	return &StepFailure{StepID: step.ID, Err: cause}
}

// publish emits a lifecycle event. Event delivery is observability, not
// control flow: failures are logged and swallowed.
func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	err := e.eventBus.Publish(ctx, key, event)
	if err != nil {
		e.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) observeStep(stepID, status string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}

	e.metrics.StepDuration.WithLabelValues(stepID, status).Observe(elapsed.Seconds())
}

func resultsPatch(result steps.Result) persistence.ResultsPatch {
	patch := persistence.ResultsPatch{
		Documents:          result.Documents,
		ComplianceSchedule: result.ComplianceSchedule,
	}

	if result.FilingNumber != "" {
		patch.FilingNumber = &result.FilingNumber
	}

	if result.EIN != "" {
		patch.EIN = &result.EIN
	}

	if result.BankAccount != "" {
		patch.BankAccount = &result.BankAccount
	}

	return patch
}
