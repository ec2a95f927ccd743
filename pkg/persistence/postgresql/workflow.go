package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , client_id
  , plan_id
  , status
  , total_estimated_minutes
  , actual_minutes
  , started_at
  , completed_at
  , request
  , documents
  , filing_number
  , ein
  , bank_account
  , compliance_schedule
  , created_at
  , updated_at
`

// Create inserts the workflow row and one row per step in a single
// transaction.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	requestJSON, err := json.Marshal(workflow.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal formation request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflows (
			id, client_id, plan_id, status, total_estimated_minutes,
			request, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		workflow.ID,
		workflow.ClientID,
		workflow.PlanID,
		workflow.Status,
		workflow.TotalEstimatedMinutes,
		requestJSON,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow: %w", err)
	}

	for position, step := range workflow.Steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workflow_steps (
				workflow_id, id, position, name, description, status, estimated_minutes
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			workflow.ID,
			step.ID,
			position,
			step.Name,
			step.Description,
			step.Status,
			step.EstimatedMinutes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step %s: %w", step.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit workflow creation: %w", err)
	}

	return nil
}

// GetByID returns the full workflow including its steps.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+workflowColumns+`
		FROM workflows
		WHERE id = $1
	`, id)

	workflow, err := r.scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	err = r.loadSteps(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow steps: %w", err)
	}

	return workflow, nil
}

// GetByClient returns every workflow for a client, newest first.
func (r *WorkflowRepository) GetByClient(ctx context.Context, clientID string) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+workflowColumns+`
		FROM workflows
		WHERE client_id = $1
		ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		err = r.loadSteps(ctx, workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow steps: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// UpdateStatus records a workflow status change. started_at is stamped on the
// first move to in_progress, completed_at on any terminal status.
func (r *WorkflowRepository) UpdateStatus(ctx context.Context, id string, status models.WorkflowStatus, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workflows
		SET status = $2
		  , started_at = CASE WHEN $2 = 'in_progress' AND started_at IS NULL THEN $3 ELSE started_at END
		  , completed_at = CASE WHEN $2 IN ('completed', 'failed') AND completed_at IS NULL THEN $3 ELSE completed_at END
		  , updated_at = $3
		WHERE id = $1
	`, id, status, at)
	if err != nil {
		return persistence.NewWorkflowError("UpdateStatus", id, err)
	}

	return r.requireRow(result, "UpdateStatus", id)
}

// Finalize marks the workflow completed with its measured total duration.
func (r *WorkflowRepository) Finalize(ctx context.Context, id string, actualMinutes float64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workflows
		SET status = 'completed'
		  , actual_minutes = $2
		  , completed_at = $3
		  , updated_at = $3
		WHERE id = $1
	`, id, actualMinutes, at)
	if err != nil {
		return persistence.NewWorkflowError("Finalize", id, err)
	}

	return r.requireRow(result, "Finalize", id)
}

// UpdateStep writes the current state of one step row.
func (r *WorkflowRepository) UpdateStep(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workflow_steps
		SET status = $3
		  , actual_minutes = $4
		  , error = NULLIF($5, '')
		  , started_at = $6
		  , completed_at = $7
		WHERE workflow_id = $1 AND id = $2
	`,
		workflowID,
		step.ID,
		step.Status,
		nullFloat(step.ActualMinutes),
		step.Error,
		step.StartedAt,
		step.CompletedAt,
	)
	if err != nil {
		return persistence.NewStepError("UpdateStep", workflowID, step.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStepError("UpdateStep", workflowID, step.ID, err)
	}

	if affected == 0 {
		return persistence.NewStepError("UpdateStep", workflowID, step.ID, persistence.ErrStepNotFound)
	}

	return nil
}

// UpdateResults applies a partial step-output patch. Only the patched columns
// appear in the SET clause, so concurrent parallel-step results never
// overwrite each other.
func (r *WorkflowRepository) UpdateResults(ctx context.Context, workflowID string, patch persistence.ResultsPatch) error {
	if patch.Empty() {
		return nil
	}

	assignments := []string{"updated_at = NOW()"}
	args := []any{workflowID}

	appendArg := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Documents != nil {
		documentsJSON, err := json.Marshal(patch.Documents)
		if err != nil {
			return persistence.NewWorkflowError("UpdateResults", workflowID, err)
		}

		appendArg("documents", documentsJSON)
	}

	if patch.FilingNumber != nil {
		appendArg("filing_number", *patch.FilingNumber)
	}

	if patch.EIN != nil {
		appendArg("ein", *patch.EIN)
	}

	if patch.BankAccount != nil {
		appendArg("bank_account", *patch.BankAccount)
	}

	if patch.ComplianceSchedule != nil {
		scheduleJSON, err := json.Marshal(patch.ComplianceSchedule)
		if err != nil {
			return persistence.NewWorkflowError("UpdateResults", workflowID, err)
		}

		appendArg("compliance_schedule", scheduleJSON)
	}

	query := "UPDATE workflows SET " + strings.Join(assignments, ", ") + " WHERE id = $1"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewWorkflowError("UpdateResults", workflowID, err)
	}

	return r.requireRow(result, "UpdateResults", workflowID)
}

func (r *WorkflowRepository) requireRow(result sql.Result, op, workflowID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError(op, workflowID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError(op, workflowID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *WorkflowRepository) scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow      models.Workflow
		actualMinutes sql.NullFloat64
		filingNumber  sql.NullString
		ein           sql.NullString
		bankAccount   sql.NullString
		requestJSON   []byte
		documentsJSON []byte
		scheduleJSON  []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.ClientID,
		&workflow.PlanID,
		&workflow.Status,
		&workflow.TotalEstimatedMinutes,
		&actualMinutes,
		&workflow.StartedAt,
		&workflow.CompletedAt,
		&requestJSON,
		&documentsJSON,
		&filingNumber,
		&ein,
		&bankAccount,
		&scheduleJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.ActualMinutes = actualMinutes.Float64
	workflow.FilingNumber = filingNumber.String
	workflow.EIN = ein.String
	workflow.BankAccount = bankAccount.String

	err = json.Unmarshal(requestJSON, &workflow.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal formation request: %w", err)
	}

	if len(documentsJSON) > 0 {
		err = json.Unmarshal(documentsJSON, &workflow.Documents)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
		}
	}

	if len(scheduleJSON) > 0 {
		err = json.Unmarshal(scheduleJSON, &workflow.ComplianceSchedule)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal compliance schedule: %w", err)
		}
	}

	return &workflow, nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, workflow *models.Workflow) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id
		  , name
		  , description
		  , status
		  , estimated_minutes
		  , actual_minutes
		  , error
		  , started_at
		  , completed_at
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY position ASC
	`, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query steps: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close step rows", "error", err)
		}
	}()

	workflow.Steps = make([]*models.WorkflowStep, 0)

	for rows.Next() {
		var (
			step          models.WorkflowStep
			actualMinutes sql.NullFloat64
			stepError     sql.NullString
		)

		err = rows.Scan(
			&step.ID,
			&step.Name,
			&step.Description,
			&step.Status,
			&step.EstimatedMinutes,
			&actualMinutes,
			&stepError,
			&step.StartedAt,
			&step.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}

		step.ActualMinutes = actualMinutes.Float64
		step.Error = stepError.String

		workflow.Steps = append(workflow.Steps, &step)
	}

	return rows.Err()
}

func nullFloat(value float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: value, Valid: value != 0}
}
