// Package notify is the completion notification sink. It consumes
// workflow.completed events and informs the client and the internal support
// channel. Delivery is fire-and-forget: a notification failure never rolls
// back or fails the already-completed workflow.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/formationhq/formation/pkg/events"
)

// Sender delivers one rendered notification. Implementations wrap the email
// or chat provider of choice.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender writes notifications to the log. Used in development and as the
// default when no provider is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	s.Logger.Info("Notification sent", "recipient", recipient, "subject", subject, "body", body)

	return nil
}

// Sink handles workflow.completed events.
type Sink struct {
	sender         Sender
	supportChannel string
	logger         *slog.Logger
}

// NewSink creates a notification sink. supportChannel is the internal
// recipient copied on every completion.
func NewSink(sender Sender, supportChannel string, logger *slog.Logger) *Sink {
	return &Sink{
		sender:         sender,
		supportChannel: supportChannel,
		logger:         logger,
	}
}

// HandleWorkflowCompleted is an eventbus.EventHandler. It always returns nil:
// notification failures are logged, never redelivered or propagated.
func (s *Sink) HandleWorkflowCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.WorkflowCompleted)
	if !ok {
		s.logger.Error("Invalid event type for workflow.completed handler")

		return nil
	}

	subject := fmt.Sprintf("Your LLC %q is formed", completed.CompanyName)
	body := fmt.Sprintf(
		"Formation of %s is complete. EIN: %s. Bank account: %s. Documents: %d.",
		completed.CompanyName, completed.EIN, completed.BankAccount, len(completed.Documents),
	)

	err := s.sender.Send(ctx, completed.OwnerEmail, subject, body)
	if err != nil {
		s.logger.Error("Failed to notify client",
			"workflow_id", completed.WorkflowID, "recipient", completed.OwnerEmail, "error", err)
	}

	err = s.sender.Send(ctx, s.supportChannel,
		fmt.Sprintf("Formation completed: %s", completed.WorkflowID),
		fmt.Sprintf("Client %s, company %q, took %.1f minutes.",
			completed.ClientID, completed.CompanyName, completed.ActualMinutes),
	)
	if err != nil {
		s.logger.Error("Failed to notify support channel",
			"workflow_id", completed.WorkflowID, "error", err)
	}

	return nil
}
