// Package queue publishes campaign messages and follow-up tasks to RabbitMQ.
// Rendering and actual delivery happen downstream; this side only enqueues.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	messageQueue = "campaign.messages"
	taskQueue    = "campaign.tasks"
)

// CampaignMessage is the payload handed to the delivery worker.
type CampaignMessage struct {
	MessageID   string            `json:"message_id"`
	LeadID      string            `json:"lead_id"`
	TemplateKey string            `json:"template_key"`
	Variables   map[string]string `json:"variables"`
	EnqueuedAt  time.Time         `json:"enqueued_at"`
}

// FollowUpTask asks the CRM worker to schedule a follow-up for a lead.
type FollowUpTask struct {
	TaskID      string    `json:"task_id"`
	LeadID      string    `json:"lead_id"`
	DueAt       time.Time `json:"due_at"`
	Description string    `json:"description"`
}

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewPublisher dials the broker and declares the campaign queues. Queues
// are durable and messages persistent so they survive broker restarts.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, name := range []string{messageQueue, taskQueue} {
		if _, err := ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	return &Publisher{
		conn: conn,
		ch:   ch,
		log:  log.With(zap.String("component", "queue_publisher")),
	}, nil
}

func (p *Publisher) EnqueueMessage(ctx context.Context, leadID uuid.UUID, templateKey string, variables map[string]string) (string, error) {
	msg := CampaignMessage{
		MessageID:   uuid.New().String(),
		LeadID:      leadID.String(),
		TemplateKey: templateKey,
		Variables:   variables,
		EnqueuedAt:  time.Now().UTC(),
	}

	if err := p.publish(ctx, messageQueue, msg); err != nil {
		p.log.Error("Failed to enqueue campaign message",
			zap.Error(err),
			zap.String("lead_id", leadID.String()),
			zap.String("template_key", templateKey),
		)
		return "", fmt.Errorf("enqueue message for lead %s: %w", leadID.String(), err)
	}

	return msg.MessageID, nil
}

func (p *Publisher) CreateTask(ctx context.Context, leadID uuid.UUID, dueAt time.Time, description string) (string, error) {
	task := FollowUpTask{
		TaskID:      uuid.New().String(),
		LeadID:      leadID.String(),
		DueAt:       dueAt,
		Description: description,
	}

	if err := p.publish(ctx, taskQueue, task); err != nil {
		p.log.Error("Failed to enqueue follow-up task",
			zap.Error(err),
			zap.String("lead_id", leadID.String()),
		)
		return "", fmt.Errorf("enqueue task for lead %s: %w", leadID.String(), err)
	}

	return task.TaskID, nil
}

func (p *Publisher) publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
