package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_Execute(t *testing.T) {
	step := NewDocuments()
	workflow := testWorkflow()

	result, err := step.Execute(context.Background(), testExecutionContext(workflow))
	require.NoError(t, err)

	require.Len(t, result.Documents, 4)
	assert.Contains(t, result.Documents, "doc://wf-test/articles-of-organization.pdf")
	assert.Contains(t, result.Documents, "doc://wf-test/operating-agreement.pdf")
	assert.Contains(t, result.Documents, "doc://wf-test/ein-application-ss4.pdf")
	assert.Contains(t, result.Documents, "doc://wf-test/membership-certificates.pdf")
}
