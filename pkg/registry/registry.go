// Package registry defines the fixed catalog of formation steps and their
// scheduling regions. It is the single source of truth for step ids: the
// executor rejects any id that is not declared here.
package registry

import (
	"time"

	"github.com/formationhq/formation/pkg/models"
)

// Step ids, in declared execution order.
const (
	StepValidation  = "validation"
	StepNameCheck   = "name_check"
	StepDocuments   = "documents"
	StepFiling      = "filing"
	StepEIN         = "ein"
	StepBankAccount = "bank_account"
	StepCompliance  = "compliance"
	StepFinalize    = "finalize"
)

// FinalizationStepID always runs last, after the parallel group settles.
const FinalizationStepID = StepFinalize

// Definition describes one catalog entry. EstimatedMinutes is the customer
// facing estimate; Timeout bounds the actual execution so a step that never
// settles cannot block its workflow forever.
type Definition struct {
	ID               string
	Name             string
	Description      string
	EstimatedMinutes int
	Timeout          time.Duration
}

var catalog = []Definition{
	{
		ID:               StepValidation,
		Name:             "Data Validation",
		Description:      "Validate the formation request payload",
		EstimatedMinutes: 5,
		Timeout:          30 * time.Second,
	},
	{
		ID:               StepNameCheck,
		Name:             "Name Availability Check",
		Description:      "Check the company name against the state registry",
		EstimatedMinutes: 10,
		Timeout:          time.Minute,
	},
	{
		ID:               StepDocuments,
		Name:             "Document Generation",
		Description:      "Generate the formation document set",
		EstimatedMinutes: 20,
		Timeout:          2 * time.Minute,
	},
	{
		ID:               StepFiling,
		Name:             "State Filing",
		Description:      "File articles of organization with the jurisdiction",
		EstimatedMinutes: 1440,
		Timeout:          5 * time.Minute,
	},
	{
		ID:               StepEIN,
		Name:             "EIN Application",
		Description:      "Apply for an Employer Identification Number",
		EstimatedMinutes: 30,
		Timeout:          5 * time.Minute,
	},
	{
		ID:               StepBankAccount,
		Name:             "Bank Account Opening",
		Description:      "Open a business bank account",
		EstimatedMinutes: 60,
		Timeout:          5 * time.Minute,
	},
	{
		ID:               StepCompliance,
		Name:             "Compliance Setup",
		Description:      "Compute the recurring compliance reminder schedule",
		EstimatedMinutes: 15,
		Timeout:          time.Minute,
	},
	{
		ID:               StepFinalize,
		Name:             "Finalization",
		Description:      "Verify all step outputs and close out the formation",
		EstimatedMinutes: 5,
		Timeout:          time.Minute,
	},
}

var sequentialIDs = []string{StepValidation, StepNameCheck, StepDocuments, StepFiling}

var parallelIDs = []string{StepEIN, StepBankAccount, StepCompliance}

// Definitions returns the full ordered catalog.
func Definitions() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)

	return out
}

// SequentialStepIDs returns the strictly ordered phase, in declared order.
func SequentialStepIDs() []string {
	out := make([]string, len(sequentialIDs))
	copy(out, sequentialIDs)

	return out
}

// ParallelStepIDs returns the concurrently dispatched group. Order carries no
// execution meaning.
func ParallelStepIDs() []string {
	out := make([]string, len(parallelIDs))
	copy(out, parallelIDs)

	return out
}

// Lookup returns the definition for a step id.
func Lookup(stepID string) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == stepID {
			return def, true
		}
	}

	return Definition{}, false
}

// TotalEstimatedMinutes sums the estimates across the whole catalog.
func TotalEstimatedMinutes() int {
	total := 0
	for _, def := range catalog {
		total += def.EstimatedMinutes
	}

	return total
}

// NewSteps builds the pending step records for a freshly created workflow.
func NewSteps() []*models.WorkflowStep {
	steps := make([]*models.WorkflowStep, 0, len(catalog))
	for _, def := range catalog {
		steps = append(steps, &models.WorkflowStep{
			ID:               def.ID,
			Name:             def.Name,
			Description:      def.Description,
			Status:           models.StepStatusPending,
			EstimatedMinutes: def.EstimatedMinutes,
		})
	}

	return steps
}
