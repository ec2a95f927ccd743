package models

import "time"

// WorkflowStatus represents the lifecycle state of a formation workflow.
type WorkflowStatus string

const (
	WorkflowStatusPending    WorkflowStatus = "pending"
	WorkflowStatusInProgress WorkflowStatus = "in_progress"
	WorkflowStatusCompleted  WorkflowStatus = "completed"
	WorkflowStatusFailed     WorkflowStatus = "failed"
)

// IsTerminal returns true when the workflow has finished, in either outcome.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusFailed
}

// ComplianceReminder is one recurring post-formation obligation computed by
// the compliance step.
type ComplianceReminder struct {
	Name     string    `json:"name"`
	CronExpr string    `json:"cron_expr"`
	NextDue  time.Time `json:"next_due"`
}

// Workflow is the aggregate root for one end-to-end formation attempt. It owns
// an ordered set of steps and collects step outputs as distinct fields; the
// original FormationRequest is never rewritten.
type Workflow struct {
	ID                    string               `json:"id"`
	ClientID              string               `json:"client_id"`
	PlanID                string               `json:"plan_id"`
	Status                WorkflowStatus       `json:"status"`
	Steps                 []*WorkflowStep      `json:"steps"`
	TotalEstimatedMinutes int                  `json:"total_estimated_minutes"`
	ActualMinutes         float64              `json:"actual_minutes,omitempty"`
	StartedAt             *time.Time           `json:"started_at,omitempty"`
	CompletedAt           *time.Time           `json:"completed_at,omitempty"`
	Request               FormationRequest     `json:"request"`
	Documents             []string             `json:"documents,omitempty"`
	FilingNumber          string               `json:"filing_number,omitempty"`
	EIN                   string               `json:"ein,omitempty"`
	BankAccount           string               `json:"bank_account,omitempty"`
	ComplianceSchedule    []ComplianceReminder `json:"compliance_schedule,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// StepByID returns the step with the given id, if present.
func (w *Workflow) StepByID(stepID string) (*WorkflowStep, bool) {
	for _, step := range w.Steps {
		if step.ID == stepID {
			return step, true
		}
	}

	return nil, false
}

// AllStepsCompleted reports whether every step reached completed status.
func (w *Workflow) AllStepsCompleted() bool {
	for _, step := range w.Steps {
		if step.Status != StepStatusCompleted {
			return false
		}
	}

	return true
}
