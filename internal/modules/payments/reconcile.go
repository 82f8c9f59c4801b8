package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// Source identifies which of the three independent producers delivered a
// status signal. All of them race against the same conditional-update guard;
// trust only changes what is accepted, never how a transition is applied.
type Source string

const (
	SourceVerify       Source = "verify"
	SourceWebhook      Source = "webhook"
	SourceNotification Source = "notification"
)

// Notifier receives best-effort side effects after a completed transition.
type Notifier interface {
	PaymentCompleted(ctx context.Context, o orders.Order) error
}

// Archiver persists raw inbound payloads for audit, best effort.
type Archiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// ReconcileService is the only component allowed to advance order status. It
// folds the synchronous verification, webhook and legacy notification paths
// into one entry point so the monotonicity guard is enforced once.
type ReconcileService struct {
	store    Store
	gateway  Gateway
	logger   *slog.Logger
	notifier Notifier // optional
	archive  Archiver // optional
}

func NewReconcileService(store Store, gateway Gateway) *ReconcileService {
	return &ReconcileService{store: store, gateway: gateway, logger: slog.Default()}
}

func (s *ReconcileService) SetLogger(l *slog.Logger) { s.logger = l }
func (s *ReconcileService) SetNotifier(n Notifier)   { s.notifier = n }
func (s *ReconcileService) SetArchiver(a Archiver)   { s.archive = a }

type ApplyResult struct {
	OrderID string
	Status  string
	// Applied is false when the transition had already happened; the signal is
	// treated as already-satisfied, not as a failure.
	Applied bool
}

// Apply folds one status signal into the stored record. Duplicate and
// out-of-order deliveries are benign: the conditional update in the store is
// the only mutation discipline, so applying a terminal status twice reports
// Applied=false the second time and nothing regresses.
func (s *ReconcileService) Apply(ctx context.Context, source Source, ev WebhookEvent, rawBody []byte) (ApplyResult, error) {
	if ev.OrderID == "" {
		return ApplyResult{}, ErrMissingOrderID
	}

	mapped, ok := MapGatewayStatus(ev.Status)
	if !ok {
		// Unmapped vendor vocabulary never reaches the store.
		return ApplyResult{}, &UnmappedStatusError{Status: ev.Status}
	}

	row := &orders.GatewayEvent{
		ID:            uuid.NewString(),
		Source:        string(source),
		EventID:       ev.EventID,
		OrderID:       ev.OrderID,
		GatewayStatus: ev.Status,
		PayloadJSON:   datatypes.JSON(rawBody),
	}
	if err := s.store.RecordEvent(ctx, row); err != nil {
		if errors.Is(err, orders.ErrDuplicate) {
			s.logger.InfoContext(ctx, "gateway event deduplicated",
				"source", source, "event_id", ev.EventID, "order_id", ev.OrderID)
			return ApplyResult{OrderID: ev.OrderID, Status: mapped, Applied: false}, nil
		}
		return ApplyResult{}, err
	}

	s.archivePayload(ctx, source, row.ID, rawBody)

	err := s.store.ApplyStatus(ctx, ev.OrderID, mapped, []string{orders.StatusPending})
	switch {
	case errors.Is(err, orders.ErrConflict):
		// Already satisfied by another producer: success, no second transition.
		_ = s.store.MarkEventProcessed(ctx, row.ID, nil)
		s.logger.InfoContext(ctx, "status already applied",
			"source", source, "order_id", ev.OrderID, "status", mapped)
		return ApplyResult{OrderID: ev.OrderID, Status: mapped, Applied: false}, nil
	case err != nil:
		_ = s.store.MarkEventProcessed(ctx, row.ID, err)
		return ApplyResult{}, err
	}

	if mkErr := s.store.MarkEventProcessed(ctx, row.ID, nil); mkErr != nil {
		s.logger.WarnContext(ctx, "failed to mark event processed",
			"event_row", row.ID, "err", mkErr)
	}

	s.logger.InfoContext(ctx, "order status advanced",
		"source", source, "order_id", ev.OrderID, "status", mapped)

	if mapped == orders.StatusCompleted {
		s.notifyCompleted(ctx, ev.OrderID)
	}
	return ApplyResult{OrderID: ev.OrderID, Status: mapped, Applied: true}, nil
}

type VerifyResult struct {
	OrderID  string
	Status   string // "success" | "failed"
	Message  string
	Verified bool
}

// VerifyPayment is the synchronous redirect-time check: the gateway's PAID
// promotes the order to completed; anything else is reported as a failed
// verification, which is a legitimate outcome, not an error.
func (s *ReconcileService) VerifyPayment(ctx context.Context, orderID string) (VerifyResult, error) {
	if orderID == "" {
		return VerifyResult{}, ErrMissingOrderID
	}
	if _, err := s.store.Get(ctx, orderID); err != nil {
		return VerifyResult{}, err
	}

	remote, err := s.gateway.QueryStatus(ctx, orderID)
	if errors.Is(err, ErrRemoteNotFound) {
		return VerifyResult{
			OrderID: orderID,
			Status:  "failed",
			Message: "Payment verification failed",
		}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}

	if remote.Status != RemotePaid {
		return VerifyResult{
			OrderID: orderID,
			Status:  "failed",
			Message: "Payment verification failed",
		}, nil
	}

	// Verification attempts have no gateway event id; each gets its own audit
	// row and idempotence comes from the status guard alone.
	if _, err := s.Apply(ctx, SourceVerify, WebhookEvent{
		EventID: uuid.NewString(),
		OrderID: orderID,
		Status:  remote.Status,
	}, nil); err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{
		OrderID:  orderID,
		Status:   "success",
		Message:  "Payment verified",
		Verified: true,
	}, nil
}

func (s *ReconcileService) notifyCompleted(ctx context.Context, orderID string) {
	if s.notifier == nil {
		return
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		s.logger.WarnContext(ctx, "receipt lookup failed", "order_id", orderID, "err", err)
		return
	}
	if err := s.notifier.PaymentCompleted(ctx, o); err != nil {
		s.logger.WarnContext(ctx, "receipt notification failed", "order_id", orderID, "err", err)
	}
}

func (s *ReconcileService) archivePayload(ctx context.Context, source Source, key string, payload []byte) {
	if s.archive == nil || len(payload) == 0 {
		return
	}
	if err := s.archive.Archive(ctx, string(source)+"_"+key, payload); err != nil {
		s.logger.WarnContext(ctx, "payload archive failed", "source", source, "err", err)
	}
}
