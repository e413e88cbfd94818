package notifier

import (
	"context"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
)

// Noop discards sale events. Used when no central transport is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(_ context.Context, _ model.SaleEvent) error { return nil }
