package steps

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiling_Execute(t *testing.T) {
	step := NewFiling()
	workflow := testWorkflow()

	result, err := step.Execute(context.Background(), testExecutionContext(workflow))
	require.NoError(t, err)

	assert.Regexp(t, fmt.Sprintf(`^CA-%d-\d{7}$`, time.Now().UTC().Year()), result.FilingNumber)
	assert.Empty(t, result.Documents)
}

func TestEIN_Execute(t *testing.T) {
	step := NewEIN()
	workflow := testWorkflow()

	result, err := step.Execute(context.Background(), testExecutionContext(workflow))
	require.NoError(t, err)

	assert.Regexp(t, `^\d{2}-\d{7}$`, result.EIN)
}

func TestBankAccount_Execute(t *testing.T) {
	step := NewBankAccount()
	workflow := testWorkflow()

	result, err := step.Execute(context.Background(), testExecutionContext(workflow))
	require.NoError(t, err)

	assert.Regexp(t, `^acct-[0-9a-f]{8}$`, result.BankAccount)
}
