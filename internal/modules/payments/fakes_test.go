package payments

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// fakeStore mirrors the conditional-update semantics of orders.Repo in memory.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]orders.Order
	events map[string]*orders.GatewayEvent // keyed source|event_id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: map[string]orders.Order{},
		events: map[string]*orders.GatewayEvent{},
	}
}

func (s *fakeStore) put(o orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = o
}

func (s *fakeStore) get(orderID string) orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID]
}

func (s *fakeStore) Get(ctx context.Context, orderID string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (s *fakeStore) GetForCustomer(ctx context.Context, customerKey, orderID string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.CustomerPhone != customerKey {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (s *fakeStore) CreateIfAbsent(ctx context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.OrderID]; ok {
		return orders.ErrAlreadyExists
	}
	s.orders[o.OrderID] = *o
	return nil
}

func (s *fakeStore) SetSession(ctx context.Context, orderID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return orders.ErrNotFound
	}
	if o.PaymentSessionID != nil {
		return orders.ErrSessionSet
	}
	o.PaymentSessionID = &sessionID
	s.orders[orderID] = o
	return nil
}

func (s *fakeStore) ApplyStatus(ctx context.Context, orderID, newStatus string, expectedPrior []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return orders.ErrNotFound
	}
	for _, prior := range expectedPrior {
		if o.Status == prior {
			o.Status = newStatus
			s.orders[orderID] = o
			return nil
		}
	}
	return orders.ErrConflict
}

func (s *fakeStore) CountRetries(ctx context.Context, rootID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id := range s.orders {
		if strings.HasPrefix(id, rootID+"_retry_") {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) RecordEvent(ctx context.Context, ev *orders.GatewayEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ev.Source + "|" + ev.EventID
	if _, ok := s.events[key]; ok {
		return orders.ErrDuplicate
	}
	s.events[key] = ev
	return nil
}

func (s *fakeStore) MarkEventProcessed(ctx context.Context, eventRowID string, processErr error) error {
	return nil
}

func (s *fakeStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// fakeGateway scripts the remote side.
type fakeGateway struct {
	mu sync.Mutex

	createErr   error
	createCalls []CreateSessionRequest

	remote   map[string]RemoteOrder
	queryErr error

	webhookEvent WebhookEvent
	webhookErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{remote: map[string]RemoteOrder{}}
}

func (g *fakeGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls = append(g.createCalls, req)
	if g.createErr != nil {
		return SessionResult{}, g.createErr
	}
	return SessionResult{PaymentSessionID: "sess_" + req.OrderID}, nil
}

func (g *fakeGateway) QueryStatus(ctx context.Context, orderID string) (RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queryErr != nil {
		return RemoteOrder{}, g.queryErr
	}
	r, ok := g.remote[orderID]
	if !ok {
		return RemoteOrder{}, ErrRemoteNotFound
	}
	return r, nil
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	return CheckoutResult{PaymentURL: "https://gateway.test/checkout/" + req.OrderID}, nil
}

func (g *fakeGateway) VerifyAndParseWebhook(headers http.Header, body []byte) (WebhookEvent, error) {
	if g.webhookErr != nil {
		return WebhookEvent{}, g.webhookErr
	}
	return g.webhookEvent, nil
}

func (g *fakeGateway) setRemote(r RemoteOrder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remote[r.OrderID] = r
}

func (g *fakeGateway) sessionCreates() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.createCalls)
}
