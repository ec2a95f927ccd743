package workflow

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/nameregistry"
	"github.com/formationhq/formation/pkg/persistence/file"
	"github.com/formationhq/formation/pkg/registry"
	"github.com/formationhq/formation/pkg/steps"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:                    id,
		ClientID:              "client-1",
		PlanID:                "standard",
		Status:                models.WorkflowStatusPending,
		Steps:                 registry.NewSteps(),
		TotalEstimatedMinutes: registry.TotalEstimatedMinutes(),
		Request: models.FormationRequest{
			CompanyName:  "Blue Bottle Trading",
			BusinessType: "consulting",
			State:        "CA",
			OwnerName:    "Jordan Smith",
			OwnerEmail:   "jordan@example.com",
			Address: models.Address{
				Street: "100 Market St",
				City:   "San Francisco",
				State:  "CA",
				Zip:    "94105",
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func newTestExecutor(t *testing.T) (*Executor, *file.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	stepSet := steps.NewDefaultSet(nameregistry.NewStatic("Taken Name LLC"))
	executor := NewExecutor(store, nil, stepSet, nil, nil, testLogger())

	return executor, store
}

func TestExecutor_ExecuteStep_Success(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1")))

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepValidation)
	require.NoError(t, err)

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	step, found := fetched.StepByID(registry.StepValidation)
	require.True(t, found)
	assert.Equal(t, models.StepStatusCompleted, step.Status)
	assert.NotNil(t, step.StartedAt)
	assert.NotNil(t, step.CompletedAt)
	assert.Empty(t, step.Error)
}

func TestExecutor_ExecuteStep_PersistsResults(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1")))

	require.NoError(t, executor.ExecuteStep(ctx, "wf-1", registry.StepDocuments))
	require.NoError(t, executor.ExecuteStep(ctx, "wf-1", registry.StepEIN))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, fetched.Documents, 4)
	assert.NotEmpty(t, fetched.EIN)

	// Outputs land on the workflow record, never on the request
	assert.Equal(t, "Blue Bottle Trading", fetched.Request.CompanyName)
}

func TestExecutor_ExecuteStep_Failure(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	workflow := newTestWorkflow("wf-1")
	workflow.Request.CompanyName = "Taken Name"
	require.NoError(t, store.CreateWorkflow(ctx, workflow))

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepNameCheck)
	require.Error(t, err)

	var failure *StepFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, registry.StepNameCheck, failure.StepID)

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	step, found := fetched.StepByID(registry.StepNameCheck)
	require.True(t, found)
	assert.Equal(t, models.StepStatusFailed, step.Status)
	assert.Contains(t, step.Error, "is not available")
	assert.NotNil(t, step.CompletedAt)
}

func TestExecutor_ExecuteStep_SkipsCompletedStep(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	workflow := newTestWorkflow("wf-1")
	completed, found := workflow.StepByID(registry.StepValidation)
	require.True(t, found)
	require.NoError(t, completed.Start(time.Now().UTC()))
	require.NoError(t, completed.Complete(time.Now().UTC(), time.Second))

	require.NoError(t, store.CreateWorkflow(ctx, workflow))

	before := *completed.CompletedAt

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepValidation)
	require.NoError(t, err)

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	step, found := fetched.StepByID(registry.StepValidation)
	require.True(t, found)
	assert.Equal(t, before, *step.CompletedAt)
}

func TestExecutor_ExecuteStep_RestartsInterruptedStep(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	// A crash mid-step leaves the step in_progress with no terminal state
	workflow := newTestWorkflow("wf-1")
	interrupted, found := workflow.StepByID(registry.StepNameCheck)
	require.True(t, found)

	firstStart := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, interrupted.Start(firstStart))

	require.NoError(t, store.CreateWorkflow(ctx, workflow))

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepNameCheck)
	require.NoError(t, err)

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	step, found := fetched.StepByID(registry.StepNameCheck)
	require.True(t, found)
	assert.Equal(t, models.StepStatusCompleted, step.Status)
	require.NotNil(t, step.StartedAt)

	// Timing was reset to the restarted attempt
	assert.True(t, step.StartedAt.After(firstStart))
	assert.Less(t, step.ActualMinutes, 1.0)
}

func TestExecutor_ExecuteStep_FailedStepIsNotRerun(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	workflow := newTestWorkflow("wf-1")
	failed, found := workflow.StepByID(registry.StepFiling)
	require.True(t, found)
	require.NoError(t, failed.Start(time.Now().UTC()))
	require.NoError(t, failed.Fail(time.Now().UTC(), "jurisdiction rejected the filing"))

	require.NoError(t, store.CreateWorkflow(ctx, workflow))

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepFiling)
	require.Error(t, err)

	var failure *StepFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, registry.StepFiling, failure.StepID)
	assert.Contains(t, err.Error(), "jurisdiction rejected the filing")
}

func TestExecutor_ExecuteStep_UnknownStep(t *testing.T) {
	executor, store := newTestExecutor(t)
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1")))

	err := executor.ExecuteStep(ctx, "wf-1", "notarization")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared in the registry")
}

func TestExecutor_ExecuteStep_WorkflowMissing(t *testing.T) {
	executor, _ := newTestExecutor(t)

	err := executor.ExecuteStep(context.Background(), "missing", registry.StepValidation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch workflow")
}

type stuckStep struct {
	id string
}

func (s *stuckStep) ID() string {
	return s.id
}

func (s *stuckStep) Execute(ctx context.Context, _ steps.ExecutionContext) (steps.Result, error) {
	<-ctx.Done()

	return steps.Result{}, ctx.Err()
}

func TestExecutor_ExecuteStep_Timeout(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	stepSet := steps.NewDefaultSet(nameregistry.NewStatic())
	stepSet[registry.StepValidation] = &stuckStep{id: registry.StepValidation}
	executor := NewExecutor(store, nil, stepSet, nil, nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1")))

	err := executor.ExecuteStep(ctx, "wf-1", registry.StepValidation)
	require.Error(t, err)

	var failure *StepFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, err.Error(), "step timed out after")

	fetched, err := store.WorkflowByID(context.Background(), "wf-1")
	require.NoError(t, err)

	step, found := fetched.StepByID(registry.StepValidation)
	require.True(t, found)
	assert.Equal(t, models.StepStatusFailed, step.Status)
}
