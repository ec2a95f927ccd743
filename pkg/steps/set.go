package steps

import "github.com/formationhq/formation/pkg/nameregistry"

// NewDefaultSet wires the full step catalog against the given name registry.
// The returned map is keyed by step id.
func NewDefaultSet(names nameregistry.Registry) map[string]Step {
	all := []Step{
		NewValidation(),
		NewNameCheck(names),
		NewDocuments(),
		NewFiling(),
		NewEIN(),
		NewBankAccount(),
		NewCompliance(),
		NewFinalize(),
	}

	set := make(map[string]Step, len(all))
	for _, step := range all {
		set[step.ID()] = step
	}

	return set
}
