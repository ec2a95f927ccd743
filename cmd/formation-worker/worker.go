// Package main provides the Formation worker implementation.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/formationhq/formation/pkg/eventbus"
	"github.com/formationhq/formation/pkg/events"
	"github.com/formationhq/formation/pkg/metrics"
	"github.com/formationhq/formation/pkg/nameregistry"
	"github.com/formationhq/formation/pkg/notify"
	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/steps"
	"github.com/formationhq/formation/pkg/workflow"
)

type WorkerManager struct {
	id           string
	logger       *slog.Logger
	persistence  persistence.Persistence
	eventBus     eventbus.EventBus
	orchestrator *workflow.Orchestrator
	sink         *notify.Sink
}

func NewWorkerManager(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	nameRegistry nameregistry.Registry,
	supportChannel string,
	logger *slog.Logger,
) *WorkerManager {
	logger = logger.With("module", "formation-worker", "worker_id", id)

	collectors := metrics.NewDefault()
	executor := workflow.NewExecutor(store, eventBus, steps.NewDefaultSet(nameRegistry), collectors, nil, logger)
	orchestrator := workflow.NewOrchestrator(store, executor, eventBus, collectors, nil, logger)
	sink := notify.NewSink(&notify.LogSender{Logger: logger}, supportChannel, logger)

	return &WorkerManager{
		id:           id,
		logger:       logger,
		persistence:  store,
		eventBus:     eventBus,
		orchestrator: orchestrator,
		sink:         sink,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	err := w.eventBus.Handle(events.WorkflowCreatedEvent, w.handleWorkflowCreated)
	if err != nil {
		return err
	}

	err = w.eventBus.Handle(events.WorkflowCompletedEvent, w.sink.HandleWorkflowCompleted)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleWorkflowCreated(ctx context.Context, event any) error {
	createdEvent, ok := event.(*events.WorkflowCreated)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for WorkflowCreated")

		return nil
	}

	logger := w.logger.With(
		"workflow_id", createdEvent.WorkflowID,
		"client_id", createdEvent.ClientID,
		"event_id", createdEvent.ID,
	)
	logger.InfoContext(ctx, "Processing workflow created event")

	err := w.orchestrator.Run(ctx, createdEvent.WorkflowID)
	if err != nil {
		// The orchestrator already persisted the failed status and published
		// workflow.failed. Redelivering the event would re-run a terminal
		// workflow, which Run rejects anyway.
		logger.ErrorContext(ctx, "Workflow run finished with failure", "error", err)
	}

	return nil
}
