package steps

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/formationhq/formation/pkg/registry"
)

// EIN applies for an Employer Identification Number with the IRS.
type EIN struct {
	latency time.Duration
}

func NewEIN() *EIN {
	return &EIN{latency: 50 * time.Millisecond}
}

func (s *EIN) ID() string {
	return registry.StepEIN
}

func (s *EIN) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	// EIN format: two-digit prefix, dash, seven-digit serial.
	ein := fmt.Sprintf("%02d-%07d", 10+rand.IntN(89), rand.IntN(10000000))

	execCtx.Logger.Info("EIN assigned", "ein", ein)

	return Result{EIN: ein}, nil
}
