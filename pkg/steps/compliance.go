package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/formationhq/formation/pkg/models"
	"github.com/formationhq/formation/pkg/registry"
)

// Compliance computes the recurring post-formation obligations as a reminder
// schedule. Each obligation is a standard cron expression evaluated from the
// time of setup.
type Compliance struct {
	latency time.Duration
}

func NewCompliance() *Compliance {
	return &Compliance{latency: 20 * time.Millisecond}
}

func (s *Compliance) ID() string {
	return registry.StepCompliance
}

var complianceObligations = []struct {
	name string
	expr string
}{
	{"annual_report", "0 9 1 4 *"},
	{"registered_agent_renewal", "0 9 1 1 *"},
	{"franchise_tax_filing", "0 9 15 3 *"},
	{"quarterly_estimated_taxes", "0 9 15 */3 *"},
}

func (s *Compliance) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()

	schedule := make([]models.ComplianceReminder, 0, len(complianceObligations))

	for _, obligation := range complianceObligations {
		parsed, err := cron.ParseStandard(obligation.expr)
		if err != nil {
			return Result{}, fmt.Errorf("invalid compliance cron expression %q: %w", obligation.expr, err)
		}

		schedule = append(schedule, models.ComplianceReminder{
			Name:     obligation.name,
			CronExpr: obligation.expr,
			NextDue:  parsed.Next(now),
		})
	}

	execCtx.Logger.Info("Compliance reminder schedule configured", "reminders", len(schedule))

	return Result{ComplianceSchedule: schedule}, nil
}
