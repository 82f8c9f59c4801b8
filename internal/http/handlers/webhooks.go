package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarupnama50/cf-py/internal/modules/payments"
)

// Reconciler is the single entry point allowed to advance order status.
type Reconciler interface {
	Apply(ctx context.Context, source payments.Source, ev payments.WebhookEvent, rawBody []byte) (payments.ApplyResult, error)
	VerifyPayment(ctx context.Context, orderID string) (payments.VerifyResult, error)
}

// WebhookVerifier parses and authenticates a gateway-signed push.
type WebhookVerifier interface {
	VerifyAndParseWebhook(headers http.Header, body []byte) (payments.WebhookEvent, error)
}

type WebhookHandler struct {
	Logger   *slog.Logger
	Verifier WebhookVerifier
	Rec      Reconciler
}

func NewWebhookHandler(logger *slog.Logger, v WebhookVerifier, rec Reconciler) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Verifier: v, Rec: rec}
}

// POST /webhook
// Body is raw JSON; signature headers validated by the gateway adapter.
// Conflict (already applied) still answers success so the gateway stops
// redelivering.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, payments.ErrBadSignature)
		return
	}

	ev, err := h.Verifier.VerifyAndParseWebhook(c.Request.Header, body)
	if err != nil {
		h.Logger.Warn("webhook rejected", "err", err)
		fail(c, err)
		return
	}

	if _, err := h.Rec.Apply(c.Request.Context(), payments.SourceWebhook, ev, body); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
