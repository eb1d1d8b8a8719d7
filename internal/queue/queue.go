package queue

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// ExtractQueue carries extraction jobs from the API to the workers.
const ExtractQueue = "extract_queue"

// MaxDeliveryRetries is the number of retries before a message is moved to
// the dead-letter queue.
const MaxDeliveryRetries = 10

type ConnParams struct {
	User     string
	Password string
	Host     string
	Port     string
}

func (p ConnParams) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", p.User, p.Password, p.Host, p.Port)
}

// Dial connects to RabbitMQ.
func Dial(params ConnParams) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(params.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupQueues declares every queue together with its dead-letter queue and a
// retry queue that routes messages back after a delay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", retryName, err)
		}
	}
	return nil
}

// Publisher is the part of an AMQP channel used for sending.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// PublishFIFO sends a persistent message to the default exchange.
func PublishFIFO(ch Publisher, queueName string, data []byte) error {
	return ch.Publish(
		"",
		queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
