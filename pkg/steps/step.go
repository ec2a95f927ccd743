// Package steps implements the domain logic for each formation step. Steps
// compute outputs from a workflow snapshot; they never touch persisted state
// themselves, that is the executor's job.
package steps

import (
	"context"
	"log/slog"
	"time"

	"github.com/formationhq/formation/pkg/models"
)

// ExecutionContext is the read-only view a step receives.
type ExecutionContext struct {
	Workflow *models.Workflow
	Logger   *slog.Logger
}

// Result carries a step's outputs. Zero-valued fields mean the step produced
// no output for that slot.
type Result struct {
	Documents          []string
	FilingNumber       string
	EIN                string
	BankAccount        string
	ComplianceSchedule []models.ComplianceReminder
}

// Step executes the domain logic for exactly one catalog entry.
type Step interface {
	ID() string
	Execute(ctx context.Context, execCtx ExecutionContext) (Result, error)
}

// simulateLatency stands in for the I/O-bound latency of external filing and
// banking APIs. It respects context cancellation so per-step timeouts apply.
func simulateLatency(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
