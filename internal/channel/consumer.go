package channel

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fairyhunter13/ecomarket-sync/internal/consumer"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// Consumer drains the durable queue with prefetch one, so processing is
// strictly sequential per instance and the processor needs no locking of
// its own beyond the aggregate's.
type Consumer struct {
	ch    *amqp.Channel
	queue string
	proc  *consumer.Processor
}

// NewConsumer binds a consumer to an open channel, queue name, and processor.
func NewConsumer(ch *amqp.Channel, queue string, proc *consumer.Processor) *Consumer {
	return &Consumer{ch: ch, queue: queue, proc: proc}
}

// Run consumes deliveries until ctx is done or the delivery stream closes.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	obs.Logger.Info("consumer_started", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	out := c.proc.Process(ctx, d.Body)
	switch out {
	case consumer.OutcomeAck:
		if err := d.Ack(false); err != nil {
			obs.Logger.Error("ack_failed", "message_id", d.MessageId, "error", err)
		}
	case consumer.OutcomeDeadLetter:
		if err := d.Nack(false, false); err != nil {
			obs.Logger.Error("nack_failed", "message_id", d.MessageId, "error", err)
		}
	case consumer.OutcomeRequeue:
		// One automatic retry per broker hop: a transient failure on a
		// delivery already flagged as redelivered goes to the dead-letter
		// queue instead of cycling until the TTL fires.
		requeue := !d.Redelivered
		if !requeue {
			obs.Logger.Warn("redelivery_exhausted", "message_id", d.MessageId)
		}
		if err := d.Nack(false, requeue); err != nil {
			obs.Logger.Error("nack_failed", "message_id", d.MessageId, "error", err)
		}
	}
	obs.Logger.Info("delivery_settled", "message_id", d.MessageId, "outcome", out.String(), "redelivered", d.Redelivered)
}
