// Package events publishes assessment lifecycle events to RabbitMQ.
// Publishing is best effort: the assessment flow treats broker failures
// as warnings, never as request failures.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/domain"
)

const publishTimeout = 5 * time.Second

// AssessmentCompletedEvent is the wire shape emitted after each persisted
// assessment. Consumers get the identifiers and the outcome, not the full
// parameter record.
type AssessmentCompletedEvent struct {
	EventType    string    `json:"event_type"`
	AssessmentID string    `json:"assessment_id"`
	RiskLevel    string    `json:"risk_level"`
	Probability  float64   `json:"probability"`
	QualityScore int       `json:"quality_score"`
	ModelVersion string    `json:"model_version"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits assessment events to a RabbitMQ exchange.
type Publisher struct {
	config  domain.EventsConfig
	logger  *logrus.Logger
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to the broker and declares the exchange and queue.
func NewPublisher(config domain.EventsConfig, logger *logrus.Logger) (*Publisher, error) {
	p := &Publisher{config: config, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.config.AMQPURL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		p.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if p.config.Queue != "" {
		if _, err := channel.QueueDeclare(
			p.config.Queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			channel.Close()
			conn.Close()
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		if err := channel.QueueBind(p.config.Queue, "assessment.*", p.config.Exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	p.conn = conn
	p.channel = channel
	p.logger.WithFields(logrus.Fields{
		"exchange": p.config.Exchange,
		"queue":    p.config.Queue,
	}).Info("Event publisher connected")

	return nil
}

// PublishAssessmentCompleted emits one event for a persisted assessment.
func (p *Publisher) PublishAssessmentCompleted(ctx context.Context, result *domain.AssessmentResult) error {
	event := AssessmentCompletedEvent{
		EventType:    "assessment.completed",
		AssessmentID: result.ID,
		RiskLevel:    string(result.RiskLevel),
		Probability:  result.Probability,
		QualityScore: result.Quality.Score,
		ModelVersion: result.ModelVersion,
		OccurredAt:   result.CreatedAt,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		// One reconnect attempt before giving up.
		if err := p.reconnectLocked(); err != nil {
			return err
		}
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.config.Exchange,
		event.EventType, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    result.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"assessment_id": result.ID,
		"risk_level":    result.RiskLevel,
	}).Debug("Assessment event published")

	return nil
}

func (p *Publisher) reconnectLocked() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.logger.Warn("Broker channel closed, reconnecting")
	return p.connect()
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.WithError(err).Warn("Error closing broker channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher discards events. It stands in when the event stream is
// disabled in configuration.
type NopPublisher struct{}

func (NopPublisher) PublishAssessmentCompleted(context.Context, *domain.AssessmentResult) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
