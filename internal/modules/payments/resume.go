package payments

import (
	"context"
	"errors"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

type ResumeInput struct {
	OrderID     string
	CustomerKey string // customer phone
	AmountPaise int64  // optional override for the successor order
}

type ResumeResult struct {
	OrderID          string
	PaymentSessionID string
	// Minted is true when a successor identity was created because the prior
	// identifier was terminally consumed.
	Minted bool
}

// ResumePayment re-enters the payment flow for an order that did not reach a
// terminal status. The stored session is reused while it is still open; a
// terminally consumed identifier gets a successor with original_order_id
// linking back.
func (s *Service) ResumePayment(ctx context.Context, in ResumeInput) (ResumeResult, error) {
	if in.OrderID == "" || in.CustomerKey == "" {
		return ResumeResult{}, ErrMissingOrderID
	}

	o, err := s.store.GetForCustomer(ctx, in.CustomerKey, in.OrderID)
	if err != nil {
		return ResumeResult{}, err
	}

	// Idempotent resume: an open session answers the request unchanged.
	if o.Status == orders.StatusPending && o.SessionID() != "" {
		return ResumeResult{OrderID: o.OrderID, PaymentSessionID: o.SessionID()}, nil
	}

	remote, err := s.gateway.QueryStatus(ctx, o.OrderID)
	switch {
	case errors.Is(err, ErrRemoteNotFound):
		// The gateway never saw this order (create failed after the local write).
		// Open a session for the same identifier; no mint.
		return s.healSession(ctx, o)
	case err != nil:
		return ResumeResult{}, err
	}

	if RemoteIsPending(remote.Status) {
		// Gateway disagrees with the local terminal state: gateway wins, and a
		// session already on the record answers the request as-is.
		if sid := o.SessionID(); sid != "" {
			return ResumeResult{OrderID: o.OrderID, PaymentSessionID: sid}, nil
		}
		if remote.PaymentSessionID != "" {
			res, err := s.attachSession(ctx, o.OrderID, remote.PaymentSessionID)
			if err != nil {
				return ResumeResult{}, err
			}
			return ResumeResult{OrderID: res.OrderID, PaymentSessionID: res.PaymentSessionID}, nil
		}
		return s.healSession(ctx, o)
	}

	// Gateway reports a terminal state: keep the local record honest, then mint
	// a successor identity for a fresh attempt.
	if mapped, ok := MapGatewayStatus(remote.Status); ok && o.Status == orders.StatusPending {
		if err := s.store.ApplyStatus(ctx, o.OrderID, mapped, []string{orders.StatusPending}); err != nil &&
			!errors.Is(err, orders.ErrConflict) {
			return ResumeResult{}, err
		}
	}

	return s.mintSuccessor(ctx, o, in.AmountPaise)
}

func (s *Service) healSession(ctx context.Context, o orders.Order) (ResumeResult, error) {
	sess, err := s.createSessionAdoptExisting(ctx, CreateSessionRequest{
		OrderID:       o.OrderID,
		AmountPaise:   o.AmountPaise,
		Currency:      o.Currency,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
	})
	if err != nil {
		return ResumeResult{}, err
	}
	res, err := s.attachSession(ctx, o.OrderID, sess.PaymentSessionID)
	if err != nil {
		return ResumeResult{}, err
	}
	return ResumeResult{OrderID: res.OrderID, PaymentSessionID: res.PaymentSessionID}, nil
}

func (s *Service) mintSuccessor(ctx context.Context, prior orders.Order, amountPaise int64) (ResumeResult, error) {
	if amountPaise <= 0 {
		amountPaise = prior.AmountPaise
	}

	minted, err := s.mintRetryID(ctx, prior.OrderID)
	if err != nil {
		return ResumeResult{}, err
	}

	sess, err := s.createSessionAdoptExisting(ctx, CreateSessionRequest{
		OrderID:       minted,
		AmountPaise:   amountPaise,
		Currency:      prior.Currency,
		CustomerID:    prior.CustomerID,
		CustomerName:  prior.CustomerName,
		CustomerEmail: prior.CustomerEmail,
		CustomerPhone: prior.CustomerPhone,
	})
	if err != nil {
		return ResumeResult{}, err
	}

	sid := sess.PaymentSessionID
	original := prior.OrderID
	successor := orders.Order{
		OrderID:          minted,
		AmountPaise:      amountPaise,
		Currency:         prior.Currency,
		CustomerID:       prior.CustomerID,
		CustomerName:     prior.CustomerName,
		CustomerEmail:    prior.CustomerEmail,
		CustomerPhone:    prior.CustomerPhone,
		PaymentSessionID: &sid,
		Status:           orders.StatusPending,
		OriginalOrderID:  &original,
	}
	if err := s.store.CreateIfAbsent(ctx, &successor); err != nil {
		if errors.Is(err, orders.ErrAlreadyExists) {
			// A concurrent resume minted the same successor; both callers share it.
			existing, gerr := s.existingResult(ctx, minted)
			if gerr != nil {
				return ResumeResult{}, gerr
			}
			return ResumeResult{
				OrderID:          existing.OrderID,
				PaymentSessionID: existing.PaymentSessionID,
				Minted:           true,
			}, nil
		}
		return ResumeResult{}, err
	}

	s.logger.InfoContext(ctx, "successor order minted",
		"order_id", minted, "original_order_id", original)
	return ResumeResult{OrderID: minted, PaymentSessionID: sid, Minted: true}, nil
}
