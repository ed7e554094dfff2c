package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoopMessenger logs outbound messages instead of publishing them. Used
// when no broker is configured, typically in local development.
type NoopMessenger struct {
	log *zap.Logger
}

func NewNoopMessenger(log *zap.Logger) *NoopMessenger {
	return &NoopMessenger{
		log: log.With(zap.String("messenger", "noop")),
	}
}

func (m *NoopMessenger) EnqueueMessage(ctx context.Context, leadID uuid.UUID, templateKey string, variables map[string]string) (string, error) {
	id := uuid.New().String()
	m.log.Info("Campaign message dropped (no broker configured)",
		zap.String("message_id", id),
		zap.String("lead_id", leadID.String()),
		zap.String("template_key", templateKey),
	)
	return id, nil
}

func (m *NoopMessenger) CreateTask(ctx context.Context, leadID uuid.UUID, dueAt time.Time, description string) (string, error) {
	id := uuid.New().String()
	m.log.Info("Follow-up task dropped (no broker configured)",
		zap.String("task_id", id),
		zap.String("lead_id", leadID.String()),
		zap.Time("due_at", dueAt),
	)
	return id, nil
}
