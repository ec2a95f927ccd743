package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/formationhq/formation/pkg/registry"
)

// Validation checks the formation request payload. It is always the first
// sequential step, so malformed input fails the workflow before any external
// side effect occurs.
type Validation struct {
	validate *validator.Validate
}

func NewValidation() *Validation {
	return &Validation{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Validation) ID() string {
	return registry.StepValidation
}

func (s *Validation) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := s.validate.StructCtx(ctx, execCtx.Workflow.Request)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return Result{}, fmt.Errorf("invalid formation request: %s", describeFailures(validationErrors))
		}

		return Result{}, fmt.Errorf("failed to validate formation request: %w", err)
	}

	execCtx.Logger.Info("Formation request validated",
		"company_name", execCtx.Workflow.Request.CompanyName)

	return Result{}, nil
}

func describeFailures(validationErrors validator.ValidationErrors) string {
	failures := make([]string, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		switch fieldError.Field() {
		case "CompanyName":
			failures = append(failures, "invalid company name: must be at least 2 characters")
		case "OwnerEmail":
			failures = append(failures, "invalid owner email")
		default:
			failures = append(failures, fmt.Sprintf("invalid %s (%s)", fieldError.Field(), fieldError.Tag()))
		}
	}

	return strings.Join(failures, "; ")
}
