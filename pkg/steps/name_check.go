package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/formationhq/formation/pkg/nameregistry"
	"github.com/formationhq/formation/pkg/registry"
)

// NameCheck verifies the requested company name against the state registry.
// An unavailable name is a terminal domain rejection, not a retryable error.
type NameCheck struct {
	registry nameregistry.Registry
	latency  time.Duration
}

func NewNameCheck(reg nameregistry.Registry) *NameCheck {
	return &NameCheck{registry: reg, latency: 30 * time.Millisecond}
}

func (s *NameCheck) ID() string {
	return registry.StepNameCheck
}

func (s *NameCheck) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	request := execCtx.Workflow.Request

	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	available, err := s.registry.Available(ctx, request.State, request.CompanyName)
	if err != nil {
		return Result{}, fmt.Errorf("name availability lookup failed: %w", err)
	}

	if !available {
		return Result{}, fmt.Errorf("company name %q is not available in %s", request.CompanyName, request.State)
	}

	execCtx.Logger.Info("Company name is available",
		"company_name", request.CompanyName, "state", request.State)

	return Result{}, nil
}
