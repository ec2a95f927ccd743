package steps

import (
	"context"
	"errors"

	"github.com/formationhq/formation/pkg/registry"
)

// Finalize runs last and verifies that every earlier step left its output on
// the workflow record before the formation is declared complete.
type Finalize struct{}

func NewFinalize() *Finalize {
	return &Finalize{}
}

func (s *Finalize) ID() string {
	return registry.StepFinalize
}

func (s *Finalize) Execute(_ context.Context, execCtx ExecutionContext) (Result, error) {
	workflow := execCtx.Workflow

	if len(workflow.Documents) == 0 {
		return Result{}, errors.New("finalization check failed: no generated documents")
	}

	if workflow.FilingNumber == "" {
		return Result{}, errors.New("finalization check failed: missing filing number")
	}

	if workflow.EIN == "" {
		return Result{}, errors.New("finalization check failed: missing EIN")
	}

	if workflow.BankAccount == "" {
		return Result{}, errors.New("finalization check failed: missing bank account reference")
	}

	if len(workflow.ComplianceSchedule) == 0 {
		return Result{}, errors.New("finalization check failed: missing compliance schedule")
	}

	execCtx.Logger.Info("Formation finalized",
		"company_name", workflow.Request.CompanyName,
		"filing_number", workflow.FilingNumber)

	return Result{}, nil
}
