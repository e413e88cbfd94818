// Package notifier emits sale events toward the central channel after a
// local sale commits, off the caller's response path.
//
// Notification is best effort: the sale is already committed locally, so a
// failed publish is logged and counted but never surfaced to the caller and
// never reverses the sale.
package notifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// Publisher delivers one sale event to the central channel.
type Publisher interface {
	Publish(ctx context.Context, ev model.SaleEvent) error
}

// Notifier builds sale events and dispatches publishes in the background.
type Notifier struct {
	pub      Publisher
	branchID string
	timeout  time.Duration

	wg        sync.WaitGroup
	published atomic.Uint64
	failed    atomic.Uint64
}

// New builds a Notifier. timeout bounds each publish attempt.
func New(pub Publisher, branchID string, timeout time.Duration) *Notifier {
	return &Notifier{pub: pub, branchID: branchID, timeout: timeout}
}

// Notify publishes a sale event on a background goroutine and returns
// immediately. The event gets a fresh message id; the caller's context is
// deliberately not used, so cancelling the sale request does not cancel a
// publish in flight.
func (n *Notifier) Notify(productID, quantitySold int64, ts time.Time, salePrice float64) {
	ev := model.SaleEvent{
		MessageID:    uuid.NewString(),
		BranchID:     n.branchID,
		ProductID:    productID,
		QuantitySold: quantitySold,
		Timestamp:    ts.UTC().Format(time.RFC3339),
		SalePrice:    salePrice,
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.pub.Publish(ctx, ev); err != nil {
			n.failed.Add(1)
			obs.Logger.Error("sale_notify_failed",
				"message_id", ev.MessageID,
				"product_id", ev.ProductID,
				"error", err,
			)
			return
		}
		n.published.Add(1)
		obs.Logger.Info("sale_notified", "message_id", ev.MessageID, "product_id", ev.ProductID)
	}()
}

// Metrics returns publish counters.
func (n *Notifier) Metrics() (published, failed uint64) {
	return n.published.Load(), n.failed.Load()
}

// Drain blocks until in-flight notifications finish or ctx is done.
func (n *Notifier) Drain(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
