package steps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formationhq/formation/pkg/models"
)

func completedWorkflow() *models.Workflow {
	workflow := testWorkflow()
	workflow.Documents = []string{"doc://wf-test/articles-of-organization.pdf"}
	workflow.FilingNumber = "CA-2026-0012345"
	workflow.EIN = "12-3456789"
	workflow.BankAccount = "acct-ab12cd34"
	workflow.ComplianceSchedule = []models.ComplianceReminder{
		{Name: "annual_report", CronExpr: "0 9 1 4 *", NextDue: time.Now().UTC().AddDate(0, 6, 0)},
	}

	return workflow
}

func TestFinalize_Execute_AllOutputsPresent(t *testing.T) {
	step := NewFinalize()

	_, err := step.Execute(context.Background(), testExecutionContext(completedWorkflow()))
	require.NoError(t, err)
}

func TestFinalize_Execute_MissingOutputs(t *testing.T) {
	step := NewFinalize()

	tests := []struct {
		name    string
		mutate  func(*models.Workflow)
		message string
	}{
		{"no documents", func(w *models.Workflow) { w.Documents = nil }, "no generated documents"},
		{"no filing number", func(w *models.Workflow) { w.FilingNumber = "" }, "missing filing number"},
		{"no ein", func(w *models.Workflow) { w.EIN = "" }, "missing EIN"},
		{"no bank account", func(w *models.Workflow) { w.BankAccount = "" }, "missing bank account reference"},
		{"no compliance schedule", func(w *models.Workflow) { w.ComplianceSchedule = nil }, "missing compliance schedule"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			workflow := completedWorkflow()
			tc.mutate(workflow)

			_, err := step.Execute(context.Background(), testExecutionContext(workflow))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestNewDefaultSet_CoversCatalog(t *testing.T) {
	set := NewDefaultSet(nil)

	require.Len(t, set, 8)

	for id, step := range set {
		assert.Equal(t, id, step.ID())
	}
}
