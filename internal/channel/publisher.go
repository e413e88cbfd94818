package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
)

// Publisher publishes sale events as persistent JSON messages onto the
// durable queue. It satisfies notifier.Publisher.
type Publisher struct {
	ch    *amqp.Channel
	queue string
}

// NewPublisher binds a publisher to an open channel and queue name.
func NewPublisher(ch *amqp.Channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

// Publish marshals the event and publishes it to the queue via the default
// exchange.
func (p *Publisher) Publish(ctx context.Context, ev model.SaleEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	return p.ch.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.MessageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
