package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formationhq/formation/pkg/models"
)

func TestSequentialStepIDs_Order(t *testing.T) {
	assert.Equal(t, []string{StepValidation, StepNameCheck, StepDocuments, StepFiling}, SequentialStepIDs())
}

func TestParallelStepIDs(t *testing.T) {
	assert.ElementsMatch(t, []string{StepEIN, StepBankAccount, StepCompliance}, ParallelStepIDs())
}

func TestLookup(t *testing.T) {
	definition, found := Lookup(StepFiling)
	require.True(t, found)
	assert.Equal(t, "State Filing", definition.Name)
	assert.Equal(t, 1440, definition.EstimatedMinutes)
	assert.Positive(t, definition.Timeout)

	_, found = Lookup("notarization")
	assert.False(t, found)
}

func TestTotalEstimatedMinutes(t *testing.T) {
	total := 0
	for _, definition := range Definitions() {
		total += definition.EstimatedMinutes
	}

	assert.Equal(t, total, TotalEstimatedMinutes())
}

func TestNewSteps(t *testing.T) {
	steps := NewSteps()
	require.Len(t, steps, len(Definitions()))

	for i, definition := range Definitions() {
		assert.Equal(t, definition.ID, steps[i].ID)
		assert.Equal(t, definition.Name, steps[i].Name)
		assert.Equal(t, definition.EstimatedMinutes, steps[i].EstimatedMinutes)
		assert.Equal(t, models.StepStatusPending, steps[i].Status)
		assert.Nil(t, steps[i].StartedAt)
	}
}

func TestCatalogRegions_CoverEveryStepOnce(t *testing.T) {
	seen := make(map[string]int)

	for _, id := range SequentialStepIDs() {
		seen[id]++
	}

	for _, id := range ParallelStepIDs() {
		seen[id]++
	}

	seen[FinalizationStepID]++

	require.Len(t, seen, len(Definitions()))

	for id, count := range seen {
		assert.Equal(t, 1, count, "step %s assigned to more than one region", id)

		_, found := Lookup(id)
		assert.True(t, found)
	}
}
