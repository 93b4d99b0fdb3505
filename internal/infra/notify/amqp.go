package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier hands messages to a notification worker through a durable
// RabbitMQ queue. Success means the broker accepted the message.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel publisher
	queue   string
	log     logger.Logger
}

func NewAMQPNotifier(url, queue string, log logger.Logger) (*AMQPNotifier, error) {
	log = log.WithModule("AMQPNotifier")

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Error("rabbitmq.connect.failed", logger.Fields{"error": err})
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		log.Error("rabbitmq.channel.failed", logger.Fields{"error": err})
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		log.Error("rabbitmq.queue.declare.failed", logger.Fields{"error": err, "queue": queue})
		return nil, fmt.Errorf("amqp: declare queue %q: %w", queue, err)
	}

	log.Info("rabbitmq.connected", logger.Fields{"queue": queue})
	return &AMQPNotifier{conn: conn, channel: ch, queue: queue, log: log}, nil
}

func (n *AMQPNotifier) Send(ctx context.Context, msg reminder.Message) reminder.Result {
	body, err := json.Marshal(msg)
	if err != nil {
		return failed(fmt.Errorf("encode message: %w", err))
	}

	err = n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         msg.Template,
		Body:         body,
	})
	if err != nil {
		return failed(fmt.Errorf("publish: %w", err))
	}
	return reminder.Result{Success: true}
}

func (n *AMQPNotifier) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	if ch, ok := n.channel.(*amqp.Channel); ok {
		if err := ch.Close(); err != nil {
			n.log.Warn("rabbitmq.channel.close.failed", logger.Fields{"error": err})
		}
	}
	return n.conn.Close()
}

var _ reminder.NotificationPort = (*AMQPNotifier)(nil)
