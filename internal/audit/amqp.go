package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp091.Channel used by AMQPSink.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPSink publishes events as persistent JSON messages to a topic exchange
// with routing key "activity.<entity_type>.<action>".
type AMQPSink struct {
	conn     *amqp091.Connection
	channel  Publisher
	exchange string
}

// DialAMQPSink connects to the broker and declares the exchange.
func DialAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSink{conn: conn, channel: ch, exchange: exchange}, nil
}

// NewAMQPSink wraps an existing channel.
func NewAMQPSink(ch Publisher, exchange string) *AMQPSink {
	return &AMQPSink{channel: ch, exchange: exchange}
}

func RoutingKey(e Event) string {
	return "activity." + e.EntityType + "." + e.Action
}

func (s *AMQPSink) Write(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = s.channel.PublishWithContext(ctx,
		s.exchange,    // exchange
		RoutingKey(e), // routing key
		false,         // mandatory
		false,         // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.OccurredAt,
			MessageId:    e.EntityID.String() + ":" + e.Action,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.exchange, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	err := s.channel.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
