package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) Get(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).First(&o, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// GetForCustomer fetches an order only when it belongs to the given customer
// key (phone). Ownership miss is reported as not found, not forbidden, so the
// endpoint does not leak which order ids exist.
func (r *Repo) GetForCustomer(ctx context.Context, customerKey, orderID string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		First(&o, "order_id = ? AND customer_phone = ?", orderID, customerKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// CreateIfAbsent inserts the order, reporting ErrAlreadyExists instead of
// overwriting. The primary key on order_id is what makes this atomic.
func (r *Repo) CreateIfAbsent(ctx context.Context, o *Order) error {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if isDup(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SetSession attaches a gateway session token to an order that has none yet.
// A session, once set, is never overwritten within the same order_id.
func (r *Repo) SetSession(ctx context.Context, orderID, sessionID string) error {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("order_id = ? AND payment_session_id IS NULL", orderID).
		Updates(map[string]any{
			"payment_session_id": sessionID,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrSessionSet
	}
	return nil
}

// ApplyStatus is the single mutation primitive for order status. The update
// succeeds only while the stored status is one of expectedPrior, so concurrent
// writers racing on the same order resolve to exactly one winner; losers get
// ErrConflict.
func (r *Repo) ApplyStatus(ctx context.Context, orderID, newStatus string, expectedPrior []string) error {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("order_id = ? AND status IN ?", orderID, expectedPrior).
		Updates(map[string]any{
			"status":     newStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// CountRetries counts orders minted from rootID via the retry-suffix scheme.
func (r *Repo) CountRetries(ctx context.Context, rootID string) (int64, error) {
	pattern := likeEscape(rootID) + "\\_retry\\_%"
	var cnt int64
	err := r.db.WithContext(ctx).Model(&Order{}).
		Where("order_id LIKE ?", pattern).
		Count(&cnt).Error
	return cnt, err
}

// RecordEvent persists an audit row for an inbound status signal. A redelivery
// of the same (source, event_id) returns ErrDuplicate via the unique index.
func (r *Repo) RecordEvent(ctx context.Context, ev *GatewayEvent) error {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		if isDup(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repo) MarkEventProcessed(ctx context.Context, eventRowID string, processErr error) error {
	updates := map[string]any{}
	if processErr != nil {
		msg := truncate(processErr.Error(), 250)
		updates["process_error"] = msg
	} else {
		now := time.Now()
		updates["processed_at"] = &now
		updates["process_error"] = nil
	}
	return r.db.WithContext(ctx).Model(&GatewayEvent{}).
		Where("id = ?", eventRowID).
		Updates(updates).Error
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func likeEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
