package file

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/persistence"
	"github.com/formationhq/formation/pkg/registry"
)

func newTestWorkflow(id, clientID string) *models.Workflow {
	return &models.Workflow{
		ID:                    id,
		ClientID:              clientID,
		PlanID:                "standard",
		Status:                models.WorkflowStatusPending,
		Steps:                 registry.NewSteps(),
		TotalEstimatedMinutes: registry.TotalEstimatedMinutes(),
		Request: models.FormationRequest{
			CompanyName: "Acme Trading",
			State:       "CA",
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestPersistence_CreateAndFetch(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	workflow := newTestWorkflow("wf-1", "client-1")
	require.NoError(t, store.CreateWorkflow(ctx, workflow))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", fetched.ClientID)
	assert.Equal(t, models.WorkflowStatusPending, fetched.Status)
	assert.Len(t, fetched.Steps, len(registry.Definitions()))
}

func TestPersistence_CreateDuplicate(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	err := store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrWorkflowAlreadyExists)
}

func TestPersistence_WorkflowByID_NotFound(t *testing.T) {
	store := NewPersistence(t.TempDir())

	_, err := store.WorkflowByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_WorkflowsByClient_NewestFirst(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	older := newTestWorkflow("wf-old", "client-1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestWorkflow("wf-new", "client-1")
	other := newTestWorkflow("wf-other", "client-2")

	require.NoError(t, store.CreateWorkflow(ctx, older))
	require.NoError(t, store.CreateWorkflow(ctx, newer))
	require.NoError(t, store.CreateWorkflow(ctx, other))

	workflows, err := store.WorkflowsByClient(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "wf-new", workflows[0].ID)
	assert.Equal(t, "wf-old", workflows[1].ID)
}

func TestPersistence_UpdateWorkflowStatus(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	startedAt := time.Now().UTC()
	require.NoError(t, store.UpdateWorkflowStatus(ctx, "wf-1", models.WorkflowStatusInProgress, startedAt))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusInProgress, fetched.Status)
	require.NotNil(t, fetched.StartedAt)
	assert.Nil(t, fetched.CompletedAt)

	failedAt := time.Now().UTC()
	require.NoError(t, store.UpdateWorkflowStatus(ctx, "wf-1", models.WorkflowStatusFailed, failedAt))

	fetched, err = store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusFailed, fetched.Status)
	require.NotNil(t, fetched.CompletedAt)

	// StartedAt keeps the original timestamp
	assert.Equal(t, startedAt.Truncate(time.Millisecond), fetched.StartedAt.Truncate(time.Millisecond))
}

func TestPersistence_FinalizeWorkflow(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	completedAt := time.Now().UTC()
	require.NoError(t, store.FinalizeWorkflow(ctx, "wf-1", 2.5, completedAt))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, fetched.Status)
	assert.InDelta(t, 2.5, fetched.ActualMinutes, 0.001)
	require.NotNil(t, fetched.CompletedAt)
}

func TestPersistence_UpdateStep(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	step := &models.WorkflowStep{ID: registry.StepValidation, Status: models.StepStatusPending}
	require.NoError(t, step.Start(time.Now().UTC()))
	require.NoError(t, store.UpdateStep(ctx, "wf-1", step))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	stored, found := fetched.StepByID(registry.StepValidation)
	require.True(t, found)
	assert.Equal(t, models.StepStatusInProgress, stored.Status)
	assert.NotNil(t, stored.StartedAt)

	err = store.UpdateStep(ctx, "wf-1", &models.WorkflowStep{ID: "unknown"})
	require.Error(t, err)
	assert.True(t, persistence.IsStepNotFound(err))
}

func TestPersistence_UpdateResults_PartialPatch(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	ein := "12-3456789"
	require.NoError(t, store.UpdateResults(ctx, "wf-1", persistence.ResultsPatch{EIN: &ein}))

	bank := "acct-ab12cd34"
	require.NoError(t, store.UpdateResults(ctx, "wf-1", persistence.ResultsPatch{BankAccount: &bank}))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)

	// The second patch must not erase the first
	assert.Equal(t, ein, fetched.EIN)
	assert.Equal(t, bank, fetched.BankAccount)
	assert.Empty(t, fetched.FilingNumber)
}

func TestPersistence_UpdateResults_ConcurrentPatches(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CreateWorkflow(ctx, newTestWorkflow("wf-1", "client-1")))

	ein := "12-3456789"
	bank := "acct-ab12cd34"
	schedule := []models.ComplianceReminder{
		{Name: "annual_report", CronExpr: "0 9 1 4 *", NextDue: time.Now().UTC().AddDate(0, 6, 0)},
	}

	patches := []persistence.ResultsPatch{
		{EIN: &ein},
		{BankAccount: &bank},
		{ComplianceSchedule: schedule},
	}

	var wg sync.WaitGroup
	for _, patch := range patches {
		wg.Add(1)

		go func(p persistence.ResultsPatch) {
			defer wg.Done()

			assert.NoError(t, store.UpdateResults(ctx, "wf-1", p))
		}(patch)
	}

	wg.Wait()

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, ein, fetched.EIN)
	assert.Equal(t, bank, fetched.BankAccount)
	assert.Len(t, fetched.ComplianceSchedule, 1)
}

func TestPersistence_HealthCheck(t *testing.T) {
	store := NewPersistence(t.TempDir())
	assert.NoError(t, store.HealthCheck(context.Background()))

	missing := NewPersistence("/nonexistent/formation-test")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
