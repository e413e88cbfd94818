// Package consumer turns each delivered sale message into at most one
// effective stock mutation on the central aggregate.
package consumer

import (
	"context"
	"encoding/json"

	"github.com/fairyhunter13/ecomarket-sync/internal/aggregate"
	"github.com/fairyhunter13/ecomarket-sync/internal/dedup"
	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// Outcome is the terminal decision for one delivery.
type Outcome int

const (
	// OutcomeAck acknowledges the message: applied, or a duplicate no-op.
	OutcomeAck Outcome = iota
	// OutcomeDeadLetter rejects without requeue: the message is permanently
	// unprocessable and retrying cannot change that.
	OutcomeDeadLetter
	// OutcomeRequeue rejects with requeue: a transient failure unrelated to
	// the message content.
	OutcomeRequeue
)

// String names the outcome for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeAck:
		return "ack"
	case OutcomeDeadLetter:
		return "dead-letter"
	case OutcomeRequeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// Processor validates, deduplicates, and applies sale events. It is the
// single writer of the aggregate and the recorder.
type Processor struct {
	agg  *aggregate.Aggregate
	seen dedup.Recorder
}

// New builds a Processor over the given aggregate and dedup recorder.
func New(agg *aggregate.Aggregate, seen dedup.Recorder) *Processor {
	return &Processor{agg: agg, seen: seen}
}

// Process classifies one delivered message body and applies its mutation
// when appropriate. It never applies the same message id twice.
func (p *Processor) Process(ctx context.Context, body []byte) Outcome {
	var ev model.SaleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		obs.Logger.Error("sale_event_malformed", "error", err)
		return OutcomeDeadLetter
	}
	if ev.MessageID == "" {
		obs.Logger.Error("sale_event_missing_message_id", "branch_id", ev.BranchID, "product_id", ev.ProductID)
		return OutcomeDeadLetter
	}

	dup, err := p.seen.Seen(ctx, ev.MessageID)
	if err != nil {
		obs.Logger.Error("dedup_lookup_failed", "message_id", ev.MessageID, "error", err)
		return OutcomeRequeue
	}
	if dup {
		obs.Logger.Info("sale_event_duplicate", "message_id", ev.MessageID)
		return OutcomeAck
	}

	if ev.ProductID <= 0 || ev.QuantitySold <= 0 {
		obs.Logger.Error("sale_event_invalid",
			"message_id", ev.MessageID,
			"product_id", ev.ProductID,
			"quantity_sold", ev.QuantitySold,
		)
		return OutcomeDeadLetter
	}

	newStock, err := p.agg.Apply(ev.ProductID, ev.QuantitySold)
	if err != nil {
		obs.Logger.Error("sale_event_unknown_product", "message_id", ev.MessageID, "product_id", ev.ProductID)
		return OutcomeDeadLetter
	}

	if err := p.seen.Mark(ctx, ev.MessageID); err != nil {
		// The mutation is already applied; a requeue here would double
		// apply on redelivery. Ack and accept the lost marker.
		obs.Logger.Error("dedup_mark_failed", "message_id", ev.MessageID, "error", err)
		return OutcomeAck
	}

	obs.Logger.Info("inventory_updated",
		"message_id", ev.MessageID,
		"branch_id", ev.BranchID,
		"product_id", ev.ProductID,
		"quantity_sold", ev.QuantitySold,
		"new_stock", newStock,
	)
	return OutcomeAck
}
