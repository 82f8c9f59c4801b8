package payments

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

var _ Store = (*orders.Repo)(nil)

// Service owns order creation, identity resolution and resume. Status
// mutation lives in ReconcileService; this service only ever writes initial
// records and session tokens.
type Service struct {
	store    Store
	gateway  Gateway
	currency string
	logger   *slog.Logger
}

func NewService(store Store, gateway Gateway, currency string) *Service {
	return &Service{store: store, gateway: gateway, currency: currency, logger: slog.Default()}
}

func (s *Service) SetLogger(l *slog.Logger) { s.logger = l }

type CreateOrderInput struct {
	OrderID       string // optional; minted when empty
	AmountPaise   int64
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type CreateOrderResult struct {
	OrderID          string
	PaymentSessionID string
	Reused           bool // an open session answered the request
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.AmountPaise <= 0 {
		return CreateOrderResult{}, ErrAmountNotPositive
	}
	if in.CustomerPhone == "" {
		return CreateOrderResult{}, ErrMissingCustomer
	}
	if in.OrderID == "" {
		in.OrderID = uuid.NewString()
	}
	if in.CustomerID == "" {
		in.CustomerID = in.CustomerPhone
	}

	res, err := s.resolveIdentity(ctx, in.OrderID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if res.reuse != nil {
		return CreateOrderResult{
			OrderID:          res.reuse.OrderID,
			PaymentSessionID: res.reuse.SessionID(),
			Reused:           true,
		}, nil
	}

	sess, err := s.createSessionAdoptExisting(ctx, CreateSessionRequest{
		OrderID:       res.orderID,
		AmountPaise:   in.AmountPaise,
		Currency:      s.currency,
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	if res.heal {
		return s.attachSession(ctx, res.orderID, sess.PaymentSessionID)
	}

	sid := sess.PaymentSessionID
	o := orders.Order{
		OrderID:          res.orderID,
		AmountPaise:      in.AmountPaise,
		Currency:         s.currency,
		CustomerID:       in.CustomerID,
		CustomerName:     in.CustomerName,
		CustomerEmail:    in.CustomerEmail,
		CustomerPhone:    in.CustomerPhone,
		PaymentSessionID: &sid,
		Status:           orders.StatusPending,
		OriginalOrderID:  res.originalOrderID,
	}
	if err := s.store.CreateIfAbsent(ctx, &o); err != nil {
		if errors.Is(err, orders.ErrAlreadyExists) {
			// Lost a race with a concurrent create for the same identifier; the
			// winner's record answers both callers.
			return s.existingResult(ctx, res.orderID)
		}
		return CreateOrderResult{}, err
	}

	s.logger.InfoContext(ctx, "order created",
		"order_id", o.OrderID, "amount_paise", o.AmountPaise,
		"derived_from", deref(o.OriginalOrderID))
	return CreateOrderResult{OrderID: o.OrderID, PaymentSessionID: sid}, nil
}

type InitiateCheckoutInput struct {
	OrderID     string
	AmountPaise int64
}

type InitiateCheckoutResult struct {
	PaymentURL string
}

// InitiateCheckout returns a hosted checkout URL for an existing order.
func (s *Service) InitiateCheckout(ctx context.Context, in InitiateCheckoutInput) (InitiateCheckoutResult, error) {
	if in.OrderID == "" {
		return InitiateCheckoutResult{}, ErrMissingOrderID
	}
	amount := in.AmountPaise
	if amount <= 0 {
		o, err := s.store.Get(ctx, in.OrderID)
		if err != nil {
			return InitiateCheckoutResult{}, err
		}
		amount = o.AmountPaise
	}
	out, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		OrderID:     in.OrderID,
		AmountPaise: amount,
		Currency:    s.currency,
	})
	if err != nil {
		return InitiateCheckoutResult{}, err
	}
	return InitiateCheckoutResult{PaymentURL: out.PaymentURL}, nil
}

// createSessionAdoptExisting creates a gateway session, then falls back to the
// gateway's stored session when the create call failed but the order turns out
// to exist remotely. A createSession timeout must not be treated as
// failure-to-create without this follow-up pass: the session may have been
// created remotely despite the local timeout.
func (s *Service) createSessionAdoptExisting(ctx context.Context, req CreateSessionRequest) (SessionResult, error) {
	sess, err := s.gateway.CreateSession(ctx, req)
	if err == nil {
		return sess, nil
	}

	var ge *GatewayError
	if !isTimeout(err) && !errors.As(err, &ge) {
		return SessionResult{}, err
	}

	remote, qerr := s.gateway.QueryStatus(ctx, req.OrderID)
	if qerr == nil && RemoteIsPending(remote.Status) && remote.PaymentSessionID != "" {
		s.logger.WarnContext(ctx, "adopted remote session after create failure",
			"order_id", req.OrderID, "create_err", err)
		return SessionResult{PaymentSessionID: remote.PaymentSessionID}, nil
	}
	return SessionResult{}, err
}

// attachSession heals a pending record that was persisted without a session
// token (partial failure on an earlier attempt).
func (s *Service) attachSession(ctx context.Context, orderID, sessionID string) (CreateOrderResult, error) {
	err := s.store.SetSession(ctx, orderID, sessionID)
	if errors.Is(err, orders.ErrSessionSet) {
		// Raced with another writer; the stored session wins.
		return s.existingResult(ctx, orderID)
	}
	if err != nil {
		return CreateOrderResult{}, err
	}
	return CreateOrderResult{OrderID: orderID, PaymentSessionID: sessionID}, nil
}

func (s *Service) existingResult(ctx context.Context, orderID string) (CreateOrderResult, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if o.Status != orders.StatusPending || o.SessionID() == "" {
		return CreateOrderResult{}, orders.ErrAlreadyExists
	}
	return CreateOrderResult{OrderID: o.OrderID, PaymentSessionID: o.SessionID(), Reused: true}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
