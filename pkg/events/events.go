// Package events defines event types for formation workflow lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the event bus topic carrying all formation events.
const Topic = "formation.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowCreatedEvent   EventType = "workflow.created"
	WorkflowStartedEvent   EventType = "workflow.started"
	WorkflowCompletedEvent EventType = "workflow.completed"
	WorkflowFailedEvent    EventType = "workflow.failed"

	// Step lifecycle events.
	StepStartedEvent   EventType = "step.started"
	StepCompletedEvent EventType = "step.completed"
	StepFailedEvent    EventType = "step.failed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	WorkerID   string    `json:"worker_id,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// WorkflowCreated signals that a formation workflow was persisted and is
// ready for orchestration.
type WorkflowCreated struct {
	BaseEvent

	ClientID string `json:"client_id"`
	PlanID   string `json:"plan_id"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowStarted struct {
	BaseEvent

	ClientID string `json:"client_id"`
}

func (w WorkflowStarted) GetType() EventType {
	return WorkflowStartedEvent
}

// WorkflowCompleted is consumed by the notification sink.
type WorkflowCompleted struct {
	BaseEvent

	ClientID      string   `json:"client_id"`
	CompanyName   string   `json:"company_name"`
	OwnerEmail    string   `json:"owner_email"`
	ActualMinutes float64  `json:"actual_minutes"`
	Documents     []string `json:"documents,omitempty"`
	EIN           string   `json:"ein,omitempty"`
	BankAccount   string   `json:"bank_account,omitempty"`
}

func (w WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

type WorkflowFailed struct {
	BaseEvent

	ClientID     string `json:"client_id"`
	FailedStepID string `json:"failed_step_id"`
	Error        string `json:"error"`
}

func (w WorkflowFailed) GetType() EventType {
	return WorkflowFailedEvent
}

type StepStarted struct {
	BaseEvent

	StepID string `json:"step_id"`
}

func (s StepStarted) GetType() EventType {
	return StepStartedEvent
}

type StepCompleted struct {
	BaseEvent

	StepID        string  `json:"step_id"`
	ActualMinutes float64 `json:"actual_minutes"`
}

func (s StepCompleted) GetType() EventType {
	return StepCompletedEvent
}

type StepFailed struct {
	BaseEvent

	StepID string `json:"step_id"`
	Error  string `json:"error"`
}

func (s StepFailed) GetType() EventType {
	return StepFailedEvent
}
