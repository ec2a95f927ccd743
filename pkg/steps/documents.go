package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/formationhq/formation/pkg/registry"
)

// Documents generates the formation document set and returns one reference
// per document.
type Documents struct {
	latency time.Duration
}

func NewDocuments() *Documents {
	return &Documents{latency: 40 * time.Millisecond}
}

func (s *Documents) ID() string {
	return registry.StepDocuments
}

var documentKinds = []string{
	"articles-of-organization",
	"operating-agreement",
	"ein-application-ss4",
	"membership-certificates",
}

func (s *Documents) Execute(ctx context.Context, execCtx ExecutionContext) (Result, error) {
	err := simulateLatency(ctx, s.latency)
	if err != nil {
		return Result{}, err
	}

	workflowID := execCtx.Workflow.ID

	documents := make([]string, 0, len(documentKinds))
	for _, kind := range documentKinds {
		documents = append(documents, fmt.Sprintf("doc://%s/%s.pdf", workflowID, kind))
	}

	execCtx.Logger.Info("Generated formation documents", "count", len(documents))

	return Result{Documents: documents}, nil
}
