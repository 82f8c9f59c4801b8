package payments

import (
	"context"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// Store is the persistence surface the payment services need. orders.Repo is
// the production implementation; tests substitute an in-memory fake. No method
// locks anything: ApplyStatus and SetSession are conditional updates and the
// per-order row is the only shared mutable resource.
type Store interface {
	Get(ctx context.Context, orderID string) (orders.Order, error)
	GetForCustomer(ctx context.Context, customerKey, orderID string) (orders.Order, error)
	CreateIfAbsent(ctx context.Context, o *orders.Order) error
	SetSession(ctx context.Context, orderID, sessionID string) error
	ApplyStatus(ctx context.Context, orderID, newStatus string, expectedPrior []string) error
	CountRetries(ctx context.Context, rootID string) (int64, error)

	RecordEvent(ctx context.Context, ev *orders.GatewayEvent) error
	MarkEventProcessed(ctx context.Context, eventRowID string, processErr error) error
}
