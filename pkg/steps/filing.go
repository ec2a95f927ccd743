package steps

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/formationhq/formation/pkg/registry"
)

// Filing submits the articles of organization to the jurisdiction and
// returns the assigned filing number.
type Filing struct {
	latency time.Duration
}

func NewFiling() *Filing {
	return &Filing{latency: 60 * time.Millisecond}
}

func (s *Filing) ID() string {
	return registry.StepFiling
}

func (s *Filing) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	request := execCtx.Workflow.Request
	filingNumber := fmt.Sprintf("%s-%d-%07d", request.State, time.Now().UTC().Year(), rand.IntN(10000000))

	execCtx.Logger.Info("Filed articles of organization",
		"state", request.State, "filing_number", filingNumber)

	return Result{FilingNumber: filingNumber}, nil
}
