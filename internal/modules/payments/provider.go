package payments

import (
	"context"
	"net/http"
	"strings"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// Gateway-side status vocabulary. Query, webhook and legacy notification all
// speak this vocabulary; the local state machine speaks orders.Status*.
const (
	RemoteActive     = "ACTIVE"
	RemotePaid       = "PAID"
	RemoteSuccess    = "SUCCESS"
	RemoteCancelled  = "CANCELLED"
	RemoteTerminated = "TERMINATED"
	RemoteExpired    = "EXPIRED"
)

type CreateSessionRequest struct {
	OrderID       string
	AmountPaise   int64
	Currency      string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type SessionResult struct {
	PaymentSessionID string
}

// RemoteOrder is the gateway's authoritative view of an order.
type RemoteOrder struct {
	OrderID          string
	Status           string // gateway vocabulary
	PaymentSessionID string
}

type CheckoutRequest struct {
	OrderID     string
	AmountPaise int64
	Currency    string
}

type CheckoutResult struct {
	PaymentURL string
}

type WebhookEvent struct {
	EventID string
	OrderID string
	Status  string // gateway vocabulary
}

type Gateway interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (SessionResult, error)
	QueryStatus(ctx context.Context, orderID string) (RemoteOrder, error)
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error)

	// Webhook: verify signature + parse event
	VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookEvent, error)
}

// MapGatewayStatus translates a gateway status code into a local terminal
// status. Codes outside the fixed table are rejected by the caller rather than
// stored; the second return is false for those and for non-terminal codes
// (ACTIVE).
func MapGatewayStatus(remote string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(remote)) {
	case RemoteSuccess, RemotePaid:
		return orders.StatusCompleted, true
	case RemoteCancelled, RemoteTerminated:
		return orders.StatusCancelled, true
	case RemoteExpired:
		return orders.StatusExpired, true
	}
	return "", false
}

// RemoteIsPending reports whether the gateway still considers the order open.
func RemoteIsPending(remote string) bool {
	return strings.EqualFold(strings.TrimSpace(remote), RemoteActive)
}
