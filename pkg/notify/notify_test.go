package notify

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formationhq/formation/pkg/events"
)

type recordingSender struct {
	sent []sentNotification
	err  error
}

type sentNotification struct {
	recipient string
	subject   string
	body      string
}

func (s *recordingSender) Send(_ context.Context, recipient, subject, body string) error {
	s.sent = append(s.sent, sentNotification{recipient: recipient, subject: subject, body: body})

	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func completedEvent() *events.WorkflowCompleted {
	return &events.WorkflowCompleted{
		BaseEvent:     events.NewBaseEvent(events.WorkflowCompletedEvent, "wf-1"),
		ClientID:      "client-1",
		CompanyName:   "Blue Bottle Trading",
		OwnerEmail:    "jordan@example.com",
		ActualMinutes: 2.5,
		Documents:     []string{"doc://wf-1/articles-of-organization.pdf"},
		EIN:           "12-3456789",
		BankAccount:   "acct-ab12cd34",
	}
}

func TestSink_HandleWorkflowCompleted(t *testing.T) {
	sender := &recordingSender{}
	sink := NewSink(sender, "support@formationhq.test", testLogger())

	err := sink.HandleWorkflowCompleted(context.Background(), completedEvent())
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)

	client := sender.sent[0]
	assert.Equal(t, "jordan@example.com", client.recipient)
	assert.Contains(t, client.subject, "Blue Bottle Trading")
	assert.Contains(t, client.body, "12-3456789")
	assert.Contains(t, client.body, "acct-ab12cd34")

	support := sender.sent[1]
	assert.Equal(t, "support@formationhq.test", support.recipient)
	assert.Contains(t, support.subject, "wf-1")
	assert.Contains(t, support.body, "client-1")
}

func TestSink_HandleWorkflowCompleted_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp unreachable")}
	sink := NewSink(sender, "support@formationhq.test", testLogger())

	// Delivery failures never fail the handler: the workflow is already done
	err := sink.HandleWorkflowCompleted(context.Background(), completedEvent())
	require.NoError(t, err)

	// Both deliveries were still attempted
	assert.Len(t, sender.sent, 2)
}

func TestSink_HandleWorkflowCompleted_WrongEventType(t *testing.T) {
	sender := &recordingSender{}
	sink := NewSink(sender, "support@formationhq.test", testLogger())

	err := sink.HandleWorkflowCompleted(context.Background(), &events.WorkflowFailed{})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestLogSender_Send(t *testing.T) {
	sender := &LogSender{Logger: testLogger()}

	err := sender.Send(context.Background(), "jordan@example.com", "subject", "body")
	assert.NoError(t, err)
}
