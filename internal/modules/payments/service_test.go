package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

func newTestService(store *fakeStore, gw *fakeGateway) *Service {
	return NewService(store, gw, "INR")
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	input := func() CreateOrderInput {
		return CreateOrderInput{
			OrderID:       "O1",
			AmountPaise:   10000,
			CustomerName:  "Asha",
			CustomerEmail: "asha@example.com",
			CustomerPhone: "9612388891",
		}
	}

	t.Run("creates pending order with session", func(t *testing.T) {
		store := newFakeStore()
		gw := newFakeGateway()
		svc := newTestService(store, gw)

		res, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.Equal(t, "O1", res.OrderID)
		assert.Equal(t, "sess_O1", res.PaymentSessionID)
		assert.False(t, res.Reused)

		stored := store.get("O1")
		assert.Equal(t, orders.StatusPending, stored.Status)
		assert.Equal(t, int64(10000), stored.AmountPaise)
		assert.Equal(t, "INR", stored.Currency)
		assert.Equal(t, "9612388891", stored.CustomerID)
		assert.Nil(t, stored.OriginalOrderID)
	})

	t.Run("mints identifier when none supplied", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, newFakeGateway())

		in := input()
		in.OrderID = ""
		res, err := svc.CreateOrder(ctx, in)
		require.NoError(t, err)
		_, perr := uuid.Parse(res.OrderID)
		assert.NoError(t, perr)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc := newTestService(newFakeStore(), newFakeGateway())
		in := input()
		in.AmountPaise = 0
		_, err := svc.CreateOrder(ctx, in)
		require.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("rejects missing customer phone", func(t *testing.T) {
		svc := newTestService(newFakeStore(), newFakeGateway())
		in := input()
		in.CustomerPhone = ""
		_, err := svc.CreateOrder(ctx, in)
		require.ErrorIs(t, err, ErrMissingCustomer)
	})

	t.Run("retry with open session reuses it without a gateway call", func(t *testing.T) {
		store := newFakeStore()
		gw := newFakeGateway()
		svc := newTestService(store, gw)

		first, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		require.Equal(t, 1, gw.sessionCreates())

		second, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.True(t, second.Reused)
		assert.Equal(t, first.OrderID, second.OrderID)
		assert.Equal(t, first.PaymentSessionID, second.PaymentSessionID)
		assert.Equal(t, 1, gw.sessionCreates())
	})

	t.Run("heals pending order missing its session", func(t *testing.T) {
		store := newFakeStore()
		store.put(orders.Order{
			OrderID: "O1", AmountPaise: 10000, Currency: "INR",
			CustomerPhone: "9612388891", Status: orders.StatusPending,
		})
		svc := newTestService(store, newFakeGateway())

		res, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.Equal(t, "O1", res.OrderID)
		assert.Equal(t, "sess_O1", res.PaymentSessionID)
		assert.Equal(t, "sess_O1", store.get("O1").SessionID())
	})

	t.Run("terminal identifier gets a successor", func(t *testing.T) {
		store := newFakeStore()
		store.put(orders.Order{
			OrderID: "O1", AmountPaise: 10000, Currency: "INR",
			CustomerPhone: "9612388891", Status: orders.StatusCompleted,
		})
		svc := newTestService(store, newFakeGateway())

		res, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.Equal(t, "O1_retry_1", res.OrderID)
		assert.Equal(t, "sess_O1_retry_1", res.PaymentSessionID)

		successor := store.get("O1_retry_1")
		require.NotNil(t, successor.OriginalOrderID)
		assert.Equal(t, "O1", *successor.OriginalOrderID)
		assert.Equal(t, orders.StatusCompleted, store.get("O1").Status)
	})

	t.Run("gateway pending overrides local terminal state", func(t *testing.T) {
		sid := "sess_remote"
		store := newFakeStore()
		store.put(orders.Order{
			OrderID: "O1", AmountPaise: 10000, Currency: "INR",
			CustomerPhone: "9612388891", PaymentSessionID: &sid,
			Status: orders.StatusCancelled,
		})
		gw := newFakeGateway()
		gw.setRemote(RemoteOrder{OrderID: "O1", Status: RemoteActive, PaymentSessionID: sid})
		svc := newTestService(store, gw)

		res, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.True(t, res.Reused)
		assert.Equal(t, "O1", res.OrderID)
		assert.Equal(t, sid, res.PaymentSessionID)
		assert.Equal(t, 0, gw.sessionCreates())
	})

	t.Run("create timeout adopts the remotely created session", func(t *testing.T) {
		store := newFakeStore()
		gw := newFakeGateway()
		gw.createErr = context.DeadlineExceeded
		gw.setRemote(RemoteOrder{OrderID: "O1", Status: RemoteActive, PaymentSessionID: "sess_remote"})
		svc := newTestService(store, gw)

		res, err := svc.CreateOrder(ctx, input())
		require.NoError(t, err)
		assert.Equal(t, "sess_remote", res.PaymentSessionID)
		assert.Equal(t, orders.StatusPending, store.get("O1").Status)
	})

	t.Run("create timeout without a remote order fails", func(t *testing.T) {
		gw := newFakeGateway()
		gw.createErr = context.DeadlineExceeded
		svc := newTestService(newFakeStore(), gw)

		_, err := svc.CreateOrder(ctx, input())
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestInitiateCheckout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns hosted checkout url", func(t *testing.T) {
		svc := newTestService(newFakeStore(), newFakeGateway())
		res, err := svc.InitiateCheckout(ctx, InitiateCheckoutInput{OrderID: "O1", AmountPaise: 10000})
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.test/checkout/O1", res.PaymentURL)
	})

	t.Run("loads amount from the stored order when omitted", func(t *testing.T) {
		store := newFakeStore()
		store.put(orders.Order{OrderID: "O1", AmountPaise: 25000, Status: orders.StatusPending})
		svc := newTestService(store, newFakeGateway())

		_, err := svc.InitiateCheckout(ctx, InitiateCheckoutInput{OrderID: "O1"})
		require.NoError(t, err)
	})

	t.Run("unknown order without an amount fails", func(t *testing.T) {
		svc := newTestService(newFakeStore(), newFakeGateway())
		_, err := svc.InitiateCheckout(ctx, InitiateCheckoutInput{OrderID: "ghost"})
		require.ErrorIs(t, err, orders.ErrNotFound)
	})

	t.Run("requires an order id", func(t *testing.T) {
		svc := newTestService(newFakeStore(), newFakeGateway())
		_, err := svc.InitiateCheckout(ctx, InitiateCheckoutInput{})
		require.ErrorIs(t, err, ErrMissingOrderID)
	})
}

func TestRetryRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "O1", retryRoot("O1"))
	assert.Equal(t, "O1", retryRoot("O1_retry_1"))
	assert.Equal(t, "O1", retryRoot("O1_retry_12"))
	assert.Equal(t, "order_retry", retryRoot("order_retry"))
}
