package steps

import (
	"log/slog"
	"os"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:       "wf-test",
		ClientID: "client-1",
		PlanID:   "standard",
		Status:   models.WorkflowStatusInProgress,
		Steps:    registry.NewSteps(),
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
			EstimatedRevenue: 250000,
			EmployeeCount:    3,
		},
	}
}

func testExecutionContext(workflow *models.Workflow) ExecutionContext {
	return ExecutionContext{Workflow: workflow, Logger: testLogger()}
}
