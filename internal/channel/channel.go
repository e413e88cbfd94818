// Package channel wires the durable AMQP queue that carries sale events
// from branches to the central consumer, including its dead-letter route.
package channel

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// Setup dials the broker and opens a channel. A short retry loop covers
// broker startup races in containerized deployments.
func Setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		obs.Logger.Warn("amqp_dial_failed", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}

// DeclareTopology declares the durable main queue and its durable
// dead-letter queue. Messages left unconsumed past the TTL, and messages
// the consumer rejects without requeue, are routed to the dead-letter
// queue on the default exchange.
func DeclareTopology(ch *amqp.Channel, queue, deadLetterQueue string, messageTTL time.Duration) error {
	args := amqp.Table{
		"x-message-ttl":             messageTTL.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": deadLetterQueue,
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}
	if _, err := ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead-letter queue %q: %w", deadLetterQueue, err)
	}
	return nil
}
