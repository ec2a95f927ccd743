// Package file provides file-based persistence for development and tests.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system, one JSON
// document per workflow. A single mutex serializes every read-modify-write so
// parallel-group steps finishing together cannot lose each other's updates.
type Persistence struct {
	root string
	mu   sync.Mutex
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) workflowPath(id string) string {
	return filepath.Join(p.root, "workflows", id+".json")
}

func (p *Persistence) read(id string) (*models.Workflow, error) {
	data, err := os.ReadFile(p.workflowPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(data, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) write(workflow *models.Workflow) error {
	err := os.MkdirAll(filepath.Join(p.root, "workflows"), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	err = os.WriteFile(p.workflowPath(workflow.ID), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write workflow file: %w", err)
	}

	return nil
}

// CreateWorkflow inserts the workflow and all of its step records.
func (p *Persistence) CreateWorkflow(_ context.Context, workflow *models.Workflow) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.read(workflow.ID)
	if err == nil {
		return persistence.NewWorkflowError("CreateWorkflow", workflow.ID, persistence.ErrWorkflowAlreadyExists)
	}

	if !persistence.IsWorkflowNotFound(err) {
		return persistence.NewWorkflowError("CreateWorkflow", workflow.ID, err)
	}

	return p.write(workflow)
}

// WorkflowByID returns the full workflow including its steps.
func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.read(id)
}

// WorkflowsByClient returns every workflow for a client, newest first.
func (p *Persistence) WorkflowsByClient(_ context.Context, clientID string) ([]*models.Workflow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	root := os.DirFS(filepath.Join(p.root, "workflows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflow, err := p.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if workflow.ClientID == clientID {
			workflows = append(workflows, workflow)
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// UpdateWorkflowStatus records a workflow status change with timestamps.
func (p *Persistence) UpdateWorkflowStatus(_ context.Context, id string, status models.WorkflowStatus, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	workflow, err := p.read(id)
	if err != nil {
		return persistence.NewWorkflowError("UpdateWorkflowStatus", id, err)
	}

	workflow.Status = status

	if status == models.WorkflowStatusInProgress && workflow.StartedAt == nil {
		workflow.StartedAt = &at
	}

	if status.IsTerminal() && workflow.CompletedAt == nil {
		workflow.CompletedAt = &at
	}

	workflow.UpdatedAt = at

	return p.write(workflow)
}

// FinalizeWorkflow marks the workflow completed with its total duration.
func (p *Persistence) FinalizeWorkflow(_ context.Context, id string, actualMinutes float64, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	workflow, err := p.read(id)
	if err != nil {
		return persistence.NewWorkflowError("FinalizeWorkflow", id, err)
	}

	workflow.Status = models.WorkflowStatusCompleted
	workflow.ActualMinutes = actualMinutes
	workflow.CompletedAt = &at
	workflow.UpdatedAt = at

	return p.write(workflow)
}

// UpdateStep writes the current state of one step.
func (p *Persistence) UpdateStep(_ context.Context, workflowID string, step *models.WorkflowStep) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	workflow, err := p.read(workflowID)
	if err != nil {
		return persistence.NewStepError("UpdateStep", workflowID, step.ID, err)
	}

	for i, existing := range workflow.Steps {
		if existing.ID == step.ID {
			stored := *step
			workflow.Steps[i] = &stored
			workflow.UpdatedAt = time.Now().UTC()

			return p.write(workflow)
		}
	}

	return persistence.NewStepError("UpdateStep", workflowID, step.ID, persistence.ErrStepNotFound)
}

// UpdateResults applies a partial step-output patch to the workflow.
func (p *Persistence) UpdateResults(_ context.Context, workflowID string, patch persistence.ResultsPatch) error {
	if patch.Empty() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	workflow, err := p.read(workflowID)
	if err != nil {
		return persistence.NewWorkflowError("UpdateResults", workflowID, err)
	}

	if patch.Documents != nil {
		workflow.Documents = patch.Documents
	}

	if patch.FilingNumber != nil {
		workflow.FilingNumber = *patch.FilingNumber
	}

	if patch.EIN != nil {
		workflow.EIN = *patch.EIN
	}

	if patch.BankAccount != nil {
		workflow.BankAccount = *patch.BankAccount
	}

	if patch.ComplianceSchedule != nil {
		workflow.ComplianceSchedule = patch.ComplianceSchedule
	}

	workflow.UpdatedAt = time.Now().UTC()

	return p.write(workflow)
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
