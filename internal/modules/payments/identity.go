package payments

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// Identity resolution: decide which order identifier a new gateway session may
// use. The rule is fixed: never mint a new identity while a session is
// non-terminal; always mint one before re-using a terminally-consumed
// identifier.

type resolution struct {
	// orderID is the identifier a new session should be created under.
	orderID string
	// originalOrderID is set when orderID was minted as a successor.
	originalOrderID *string
	// reuse, when non-nil, is an existing order whose session answers the
	// request; no new gateway order is created.
	reuse *orders.Order
	// heal marks an existing pending row without a session token: attach a
	// fresh session to the same identifier instead of minting.
	heal bool
}

func (s *Service) resolveIdentity(ctx context.Context, requestedID string) (resolution, error) {
	o, err := s.store.Get(ctx, requestedID)
	if errors.Is(err, orders.ErrNotFound) {
		return resolution{orderID: requestedID}, nil
	}
	if err != nil {
		return resolution{}, err
	}

	if o.Status == orders.StatusPending {
		if o.SessionID() != "" {
			// Idempotent retry: the open session answers the request.
			return resolution{orderID: o.OrderID, reuse: &o}, nil
		}
		return resolution{orderID: o.OrderID, heal: true}, nil
	}

	// Local state is terminal; double-check against gateway truth before
	// consuming a new identifier.
	remote, err := s.gateway.QueryStatus(ctx, requestedID)
	switch {
	case errors.Is(err, ErrRemoteNotFound):
		// Gateway has no record; the local terminal state stands.
	case err != nil:
		return resolution{}, err
	case RemoteIsPending(remote.Status):
		// Gateway disagrees with the local terminal state: gateway wins, and the
		// existing session is reused rather than minting a new identity.
		reuse := o
		if reuse.SessionID() == "" && remote.PaymentSessionID != "" {
			sid := remote.PaymentSessionID
			reuse.PaymentSessionID = &sid
		}
		if reuse.SessionID() == "" {
			return resolution{orderID: o.OrderID, heal: true}, nil
		}
		return resolution{orderID: o.OrderID, reuse: &reuse}, nil
	}

	minted, err := s.mintRetryID(ctx, requestedID)
	if err != nil {
		return resolution{}, err
	}
	prior := o.OrderID
	return resolution{orderID: minted, originalOrderID: &prior}, nil
}

var retrySuffixRe = regexp.MustCompile(`^(.+)_retry_\d+$`)

// retryRoot strips an existing retry suffix so successive resumes of a derived
// order keep one suffix level instead of stacking them.
func retryRoot(orderID string) string {
	if m := retrySuffixRe.FindStringSubmatch(orderID); m != nil {
		return m[1]
	}
	return orderID
}

// mintRetryID derives the next successor identifier for a consumed order id
// using a monotonically increasing retry counter.
func (s *Service) mintRetryID(ctx context.Context, orderID string) (string, error) {
	root := retryRoot(orderID)
	n, err := s.store.CountRetries(ctx, root)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_retry_%d", root, n+1), nil
}
