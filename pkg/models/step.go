package models

import (
	"fmt"
	"time"
)

// StepStatus represents the lifecycle state of a single workflow step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

// IsTerminal returns true when no further transition may leave the status.
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusCompleted || s == StepStatusFailed
}

// CanTransitionTo reports whether the monotonic step state machine allows a
// move from s to next: pending -> in_progress -> {completed | failed}.
func (s StepStatus) CanTransitionTo(next StepStatus) bool {
	switch s {
	case StepStatusPending:
		return next == StepStatusInProgress
	case StepStatusInProgress:
		return next == StepStatusCompleted || next == StepStatusFailed
	default:
		return false
	}
}

// WorkflowStep is one unit of work within a formation workflow. Steps are
// created in pending state when the workflow is created, mutated exclusively
// by the step executor, and retained forever as an audit trail.
type WorkflowStep struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Status           StepStatus `json:"status"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	ActualMinutes    float64    `json:"actual_minutes,omitempty"`
	Error            string     `json:"error,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ErrInvalidTransition is returned when a status change would violate the
// monotonic step state machine.
type ErrInvalidTransition struct {
	StepID string
	From   StepStatus
	To     StepStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("step %s: invalid transition %s -> %s", e.StepID, e.From, e.To)
}

func (s *WorkflowStep) transition(next StepStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return &ErrInvalidTransition{StepID: s.ID, From: s.Status, To: next}
	}

	s.Status = next

	return nil
}

// Start moves the step to in_progress and records the start time.
func (s *WorkflowStep) Start(at time.Time) error {
	if err := s.transition(StepStatusInProgress); err != nil {
		return err
	}

	s.StartedAt = &at

	return nil
}

// Restart re-arms a step left in_progress by an interrupted run. The start
// time is reset so the measured duration covers the attempt that finishes.
func (s *WorkflowStep) Restart(at time.Time) error {
	if s.Status != StepStatusInProgress {
		return &ErrInvalidTransition{StepID: s.ID, From: s.Status, To: StepStatusInProgress}
	}

	s.StartedAt = &at

	return nil
}

// Complete moves the step to completed with its measured duration.
func (s *WorkflowStep) Complete(at time.Time, elapsed time.Duration) error {
	if err := s.transition(StepStatusCompleted); err != nil {
		return err
	}

	s.CompletedAt = &at
	s.ActualMinutes = elapsed.Minutes()

	return nil
}

// Fail moves the step to failed and records the error message.
func (s *WorkflowStep) Fail(at time.Time, cause string) error {
	if err := s.transition(StepStatusFailed); err != nil {
		return err
	}

	s.CompletedAt = &at
	s.Error = cause

	return nil
}
