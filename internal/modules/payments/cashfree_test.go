package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashfreeTestClient(baseURL string) *Cashfree {
	return NewCashfree(CashfreeConfig{
		BaseURL:       baseURL,
		CheckoutURL:   baseURL + "/checkout",
		AppID:         "app-1",
		SecretKey:     "secret-1",
		APIVersion:    "2023-08-01",
		ReturnURLBase: "https://shop.example.com/payment_response",
		NotifyURLBase: "https://shop.example.com/payment_notification",
		Timeout:       2 * time.Second,
	})
}

func TestCashfreeCreateSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sends credentials and order payload", func(t *testing.T) {
		var got cashfreeCreateOrderReq
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, "app-1", r.Header.Get("x-client-id"))
			assert.Equal(t, "secret-1", r.Header.Get("x-client-secret"))
			assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			json.NewEncoder(w).Encode(map[string]string{
				"order_id":           got.OrderID,
				"order_status":       "ACTIVE",
				"payment_session_id": "sess_abc",
			})
		}))
		defer srv.Close()

		res, err := cashfreeTestClient(srv.URL).CreateSession(ctx, CreateSessionRequest{
			OrderID:       "O1",
			AmountPaise:   12550,
			Currency:      "INR",
			CustomerID:    "9612388891",
			CustomerName:  "Asha",
			CustomerEmail: "asha@example.com",
			CustomerPhone: "9612388891",
		})
		require.NoError(t, err)
		assert.Equal(t, "sess_abc", res.PaymentSessionID)

		assert.Equal(t, "O1", got.OrderID)
		assert.Equal(t, 125.50, got.OrderAmount)
		assert.Equal(t, "INR", got.OrderCurrency)
		assert.Equal(t, "9612388891", got.Customer.CustomerID)
		assert.Equal(t, "https://shop.example.com/payment_response?order_id=O1", got.OrderMeta.ReturnURL)
		assert.Equal(t, "https://shop.example.com/payment_notification", got.OrderMeta.NotifyURL)
	})

	t.Run("missing session id is a gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"order_id": "O1", "order_status": "ACTIVE"})
		}))
		defer srv.Close()

		_, err := cashfreeTestClient(srv.URL).CreateSession(ctx, CreateSessionRequest{OrderID: "O1", AmountPaise: 100, Currency: "INR"})
		var ge *GatewayError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, http.StatusBadGateway, ge.StatusCode)
	})

	t.Run("vendor error body surfaces code and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "authentication failed",
				"code":    "request_failed",
				"type":    "authentication_error",
			})
		}))
		defer srv.Close()

		_, err := cashfreeTestClient(srv.URL).CreateSession(ctx, CreateSessionRequest{OrderID: "O1", AmountPaise: 100, Currency: "INR"})
		var ge *GatewayError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, http.StatusUnauthorized, ge.StatusCode)
		assert.Equal(t, "request_failed", ge.Code)
		assert.Equal(t, "authentication failed", ge.Message)
	})
}

func TestCashfreeQueryStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the remote order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/orders/O1", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"order_id":           "O1",
				"order_status":       "PAID",
				"payment_session_id": "sess_abc",
			})
		}))
		defer srv.Close()

		remote, err := cashfreeTestClient(srv.URL).QueryStatus(ctx, "O1")
		require.NoError(t, err)
		assert.Equal(t, "O1", remote.OrderID)
		assert.Equal(t, RemotePaid, remote.Status)
		assert.Equal(t, "sess_abc", remote.PaymentSessionID)
	})

	t.Run("404 maps to the not-found sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "order not found"})
		}))
		defer srv.Close()

		_, err := cashfreeTestClient(srv.URL).QueryStatus(ctx, "ghost")
		require.ErrorIs(t, err, ErrRemoteNotFound)
	})

	t.Run("malformed body is a gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		_, err := cashfreeTestClient(srv.URL).QueryStatus(ctx, "O1")
		var ge *GatewayError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, http.StatusBadGateway, ge.StatusCode)
	})
}

func TestCashfreeCreateCheckout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"payment_url": "https://pay.example.com/s/abc"})
	}))
	defer srv.Close()

	res, err := cashfreeTestClient(srv.URL).CreateCheckout(context.Background(), CheckoutRequest{
		OrderID: "O1", AmountPaise: 10000, Currency: "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/abc", res.PaymentURL)
}

func TestVerifyAndParseWebhook(t *testing.T) {
	t.Parallel()

	client := cashfreeTestClient("https://unused.example.com")
	body := []byte(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"event_time": "2026-08-30T12:00:00+05:30",
		"data": {
			"order": {"order_id": "O1", "order_status": "PAID"},
			"payment": {"cf_payment_id": 885473711, "payment_status": "SUCCESS"}
		}
	}`)
	ts := "1756535400"

	signed := func(body []byte, ts string) http.Header {
		h := http.Header{}
		h.Set(HeaderWebhookTimestamp, ts)
		h.Set(HeaderWebhookSignature, ComputeWebhookSignature("secret-1", ts, body))
		return h
	}

	t.Run("valid signature parses the event", func(t *testing.T) {
		ev, err := client.VerifyAndParseWebhook(signed(body, ts), body)
		require.NoError(t, err)
		assert.Equal(t, "885473711", ev.EventID)
		assert.Equal(t, "O1", ev.OrderID)
		assert.Equal(t, "SUCCESS", ev.Status)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		h := signed(body, ts)
		tampered := append([]byte{}, body...)
		tampered[len(tampered)-2] = ' '
		_, err := client.VerifyAndParseWebhook(h, tampered)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderWebhookTimestamp, ts)
		h.Set(HeaderWebhookSignature, ComputeWebhookSignature("other-secret", ts, body))
		_, err := client.VerifyAndParseWebhook(h, body)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("missing signature headers are rejected", func(t *testing.T) {
		_, err := client.VerifyAndParseWebhook(http.Header{}, body)
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("payload without payment id dedupes on a body digest", func(t *testing.T) {
		noPayment := []byte(`{"data":{"order":{"order_id":"O1","order_status":"EXPIRED"}}}`)
		ev, err := client.VerifyAndParseWebhook(signed(noPayment, ts), noPayment)
		require.NoError(t, err)
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, "EXPIRED", ev.Status)

		again, err := client.VerifyAndParseWebhook(signed(noPayment, ts), noPayment)
		require.NoError(t, err)
		assert.Equal(t, ev.EventID, again.EventID)
	})

	t.Run("payload without an order id is rejected", func(t *testing.T) {
		empty := []byte(`{"data":{}}`)
		_, err := client.VerifyAndParseWebhook(signed(empty, ts), empty)
		require.ErrorIs(t, err, ErrMissingOrderID)
	})
}
